package config

import (
	"fmt"

	"github.com/google/uuid"
)

// Identifiers is the GATT identity table. It is copied by value into the
// dispatcher and the transport and never changes after startup.
type Identifiers struct {
	BatteryService uuid.UUID `yaml:"battery_service"`
	BatteryLevel   uuid.UUID `yaml:"battery_level"`
	ConfigService  uuid.UUID `yaml:"config_service"`
	SettingRead    uuid.UUID `yaml:"setting_read"`
	SettingWrite   uuid.UUID `yaml:"setting_write"`
	SettingList    uuid.UUID `yaml:"setting_list"`
	Capture        uuid.UUID `yaml:"capture"`
}

// DefaultIdentifiers returns the identifiers the companion app expects.
// The battery ones are the Bluetooth SIG Battery Service and Battery Level.
func DefaultIdentifiers() Identifiers {
	return Identifiers{
		BatteryService: uuid.MustParse("0000180f-0000-1000-8000-00805f9b34fb"),
		BatteryLevel:   uuid.MustParse("00002a19-0000-1000-8000-00805f9b34fb"),
		ConfigService:  uuid.MustParse("6c7028e2-dc4a-11ef-9134-75e88a34574d"),
		SettingRead:    uuid.MustParse("87bdecc4-dc4a-11ef-ab7f-b7e88a34574d"),
		SettingWrite:   uuid.MustParse("994e9452-dc4a-11ef-b90e-f0e88a34574d"),
		SettingList:    uuid.MustParse("9c39ab84-dc4a-11ef-8c45-fae88a34574d"),
		Capture:        uuid.MustParse("114fc821-6a6e-4e81-bd05-1dd5ab7a679b"),
	}
}

// Characteristics returns the five characteristic identifiers in a fixed order.
func (ids Identifiers) Characteristics() []uuid.UUID {
	return []uuid.UUID{ids.BatteryLevel, ids.SettingRead, ids.SettingWrite, ids.SettingList, ids.Capture}
}

// Validate checks that every identifier is set and unique.
func (ids Identifiers) Validate() error {
	named := []struct {
		name string
		id   uuid.UUID
	}{
		{"battery_service", ids.BatteryService},
		{"battery_level", ids.BatteryLevel},
		{"config_service", ids.ConfigService},
		{"setting_read", ids.SettingRead},
		{"setting_write", ids.SettingWrite},
		{"setting_list", ids.SettingList},
		{"capture", ids.Capture},
	}

	seen := make(map[uuid.UUID]string, len(named))
	for _, n := range named {
		if n.id == uuid.Nil {
			return fmt.Errorf("identifiers.%s is not set", n.name)
		}
		if prev, dup := seen[n.id]; dup {
			return fmt.Errorf("identifiers.%s duplicates identifiers.%s (%s)", n.name, prev, n.id)
		}
		seen[n.id] = n.name
	}
	return nil
}
