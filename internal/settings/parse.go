package settings

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/srg/astrod/internal/fault"
)

// Assignment is one "id=value" pair.
type Assignment struct {
	ID    string
	Value string
}

func (a Assignment) String() string {
	return a.ID + "=" + a.Value
}

// ParseAssignment splits s at the first '='. Everything after it, including
// further '=' signs, is the value.
func ParseAssignment(s string) (Assignment, error) {
	id, value, ok := strings.Cut(s, "=")
	if !ok {
		return Assignment{}, fault.New(fault.MalformedInput, "parse assignment", "%q is not of the form id=value", s)
	}
	if id == "" {
		return Assignment{}, fault.New(fault.MalformedInput, "parse assignment", "%q has an empty setting id", s)
	}
	return Assignment{ID: id, Value: value}, nil
}

// ParseAssignments parses every entry of ss, stopping at the first failure.
func ParseAssignments(ss []string) ([]Assignment, error) {
	out := make([]Assignment, 0, len(ss))
	for _, s := range ss {
		a, err := ParseAssignment(s)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// ParseToggle maps "true", "t" and "1" to true. Every other string,
// including "TRUE" and "yes", is false.
func ParseToggle(s string) bool {
	switch s {
	case "true", "t", "1":
		return true
	default:
		return false
	}
}

// ParseRange parses a decimal number for a Range setting. Hexadecimal
// literals and values that are not finite in float32 (inf, NaN, 1e40) are
// MalformedInput.
func ParseRange(s string) (float32, error) {
	digits := strings.TrimLeft(s, "+-")
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		return 0, fault.New(fault.MalformedInput, "parse range", "%q is not a decimal number", s)
	}
	f, err := strconv.ParseFloat(s, 32)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, fault.New(fault.MalformedInput, "parse range", "%q is not a number", s)
	}
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fault.New(fault.MalformedInput, "parse range", "%q is not a finite number", s)
	}
	return float32(f), nil
}
