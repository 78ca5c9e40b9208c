package camera

import (
	"fmt"
	"slices"

	"github.com/srg/astrod/internal/fault"
)

// WidgetKind is the driver-side type of a setting.
type WidgetKind int

const (
	KindGroup WidgetKind = iota
	KindText
	KindRange
	KindToggle
	KindRadio
	KindButton
	KindDate
)

func (k WidgetKind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindText:
		return "text"
	case KindRange:
		return "range"
	case KindToggle:
		return "toggle"
	case KindRadio:
		return "radio"
	case KindButton:
		return "button"
	case KindDate:
		return "date"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Widget is a setting as reported by a driver.
type Widget interface {
	Name() string
	Kind() WidgetKind
	Readonly() bool
}

// Base carries the fields shared by all widget kinds.
type Base struct {
	ID       string
	ReadOnly bool
}

func (b *Base) Name() string   { return b.ID }
func (b *Base) Readonly() bool { return b.ReadOnly }

// Group is a section node; Children lists the ids below it.
type Group struct {
	Base
	Children []string
}

func (*Group) Kind() WidgetKind { return KindGroup }

// Text is a free-form string setting.
type Text struct {
	Base
	Value string
}

func (*Text) Kind() WidgetKind { return KindText }

// Range is a bounded numeric setting.
type Range struct {
	Base
	Value          float32
	Min, Max, Step float32
}

func (*Range) Kind() WidgetKind { return KindRange }

// Toggle is a boolean setting. A nil State is indeterminate.
type Toggle struct {
	Base
	State *bool
}

func (*Toggle) Kind() WidgetKind { return KindToggle }

// Set stores v as the toggle state.
func (t *Toggle) Set(v bool) {
	t.State = &v
}

// Radio is an enumerated setting with one active choice.
type Radio struct {
	Base
	Choice  string
	Choices []string
}

func (*Radio) Kind() WidgetKind { return KindRadio }

// SetChoice selects v if it is one of the declared choices.
func (r *Radio) SetChoice(v string) error {
	if !slices.Contains(r.Choices, v) {
		return fault.New(fault.DriverRejected, "set choice", "%q is not a valid choice for %s", v, r.ID)
	}
	r.Choice = v
	return nil
}

// Button is a stateless trigger.
type Button struct {
	Base
}

func (*Button) Kind() WidgetKind { return KindButton }

// Date is a timestamp setting in seconds since the epoch.
type Date struct {
	Base
	Timestamp int64
}

func (*Date) Kind() WidgetKind { return KindDate }

// Clone returns a deep copy of w so callers can mutate it without touching driver state.
func Clone(w Widget) Widget {
	switch v := w.(type) {
	case *Group:
		c := *v
		c.Children = slices.Clone(v.Children)
		return &c
	case *Text:
		c := *v
		return &c
	case *Range:
		c := *v
		return &c
	case *Toggle:
		c := *v
		if v.State != nil {
			s := *v.State
			c.State = &s
		}
		return &c
	case *Radio:
		c := *v
		c.Choices = slices.Clone(v.Choices)
		return &c
	case *Button:
		c := *v
		return &c
	case *Date:
		c := *v
		return &c
	default:
		return w
	}
}
