package layout

import (
	"strconv"
	"strings"
)

// Unit is the unit of a Length.
type Unit uint8

const (
	UnitNone Unit = iota
	UnitPx
	UnitPercent
)

// Length is a CSS length in pixels or percent. The zero value is unset.
type Length struct {
	Value int
	Unit  Unit
}

// Px returns a pixel length.
func Px(v int) Length { return Length{Value: v, Unit: UnitPx} }

// Percent returns a percentage length.
func Percent(v int) Length { return Length{Value: v, Unit: UnitPercent} }

// IsSet reports whether l carries a value.
func (l Length) IsSet() bool { return l.Unit != UnitNone }

// String formats l as CSS, e.g. "12px" or "50%". Unset lengths format as "".
func (l Length) String() string {
	switch l.Unit {
	case UnitPx:
		return strconv.Itoa(l.Value) + "px"
	case UnitPercent:
		return strconv.Itoa(l.Value) + "%"
	}
	return ""
}

// Resolve converts l to pixels relative to total.
func (l Length) Resolve(total float64) float64 {
	switch l.Unit {
	case UnitPx:
		return float64(l.Value)
	case UnitPercent:
		return float64(l.Value) * total / 100
	}
	return 0
}

// Declaration is a single CSS property assignment.
type Declaration struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// Style is an ordered list of declarations.
type Style []Declaration

func (s *Style) add(property, value string) {
	*s = append(*s, Declaration{Property: property, Value: value})
}

// Get returns the value of the last declaration for property.
func (s Style) Get(property string) (string, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Property == property {
			return s[i].Value, true
		}
	}
	return "", false
}

// CSS renders the declarations one per line, each line prefixed with indent.
func (s Style) CSS(indent string) string {
	var b strings.Builder
	for i, d := range s {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(indent)
		b.WriteString(d.Property)
		b.WriteString(": ")
		b.WriteString(d.Value)
		b.WriteByte(';')
	}
	return b.String()
}

// Inline renders the declarations for a style attribute.
func (s Style) Inline() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = d.Property + ": " + d.Value + ";"
	}
	return strings.Join(parts, " ")
}
