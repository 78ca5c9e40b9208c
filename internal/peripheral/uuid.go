package peripheral

import (
	"bytes"
	"encoding/binary"

	"github.com/go-ble/ble"
	"github.com/google/uuid"
)

// sigBase is the Bluetooth SIG base UUID; 16-bit ids live in bytes 2-3.
var sigBase = uuid.MustParse("00000000-0000-1000-8000-00805f9b34fb")

// bleUUID converts id to go-ble's form, shortening SIG-assigned ids to 16 bits.
func bleUUID(id uuid.UUID) ble.UUID {
	if id[0] == 0 && id[1] == 0 && bytes.Equal(id[4:], sigBase[4:]) {
		return ble.UUID16(binary.BigEndian.Uint16(id[2:4]))
	}
	return ble.MustParse(id.String())
}
