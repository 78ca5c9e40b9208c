// Package record defines the uniform shape used to describe a camera setting
// on the wire, and the tagged envelope that carries it.
package record

import (
	"fmt"
	"slices"
)

// Kind discriminates the record variants an Envelope can carry.
type Kind uint8

const (
	// KindConfig tags an Envelope carrying a ConfigRecord.
	KindConfig Kind = 0
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ConfigRecord describes one camera setting.
// Field order is part of the wire format.
type ConfigRecord struct {
	_        struct{} `cbor:",toarray"`
	ID       string   `json:"id"`
	Value    string   `json:"value"`
	Choices  []string `json:"choices"`
	Readonly bool     `json:"readonly"`
}

// HasChoice reports whether v is one of the permitted values.
func (r *ConfigRecord) HasChoice(v string) bool {
	return slices.Contains(r.Choices, v)
}

// Equal compares two records field by field. A nil and an empty choice list are equal.
func (r *ConfigRecord) Equal(o *ConfigRecord) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.ID == o.ID &&
		r.Value == o.Value &&
		r.Readonly == o.Readonly &&
		slices.Equal(r.Choices, o.Choices)
}

// Envelope is the top-level container transmitted over the wire.
// Exactly one payload field is set, selected by Kind.
type Envelope struct {
	Kind   Kind
	Config *ConfigRecord
}

// Wrap returns an Envelope carrying r.
func Wrap(r *ConfigRecord) Envelope {
	return Envelope{Kind: KindConfig, Config: r}
}

// Validate checks that the payload matching Kind is present.
func (e Envelope) Validate() error {
	switch e.Kind {
	case KindConfig:
		if e.Config == nil {
			return fmt.Errorf("envelope of kind %s has no record", e.Kind)
		}
		if e.Config.ID == "" {
			return fmt.Errorf("config record has empty id")
		}
		return nil
	default:
		return fmt.Errorf("unknown envelope kind %s", e.Kind)
	}
}
