package composition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// autoKeyword is the serialized form of an unset dimension.
const autoKeyword = "auto"

// Dimension is either an explicit pixel size or Auto (natural/derived size).
// The zero value is Auto.
type Dimension struct {
	px  int
	set bool
}

// Auto returns the unset dimension.
func Auto() Dimension { return Dimension{} }

// Px returns an explicit pixel dimension.
func Px(v int) Dimension { return Dimension{px: v, set: true} }

// Value returns the pixel size and true, or 0 and false for Auto.
func (d Dimension) Value() (int, bool) { return d.px, d.set }

// Normalize returns Auto for an explicit zero. A zero size renders as no
// size at all.
func (d Dimension) Normalize() Dimension {
	if d.set && d.px == 0 {
		return Auto()
	}
	return d
}

// InRange reports whether d is Auto or within ±MaxDimension.
func (d Dimension) InRange() bool {
	return !d.set || (d.px >= -MaxDimension && d.px <= MaxDimension)
}

// IsAuto reports whether d is unset.
func (d Dimension) IsAuto() bool { return !d.set }

// Or returns the pixel size, or fallback when d is Auto.
func (d Dimension) Or(fallback int) int {
	if d.set {
		return d.px
	}
	return fallback
}

// String returns "auto" or the pixel value followed by "px".
func (d Dimension) String() string {
	if !d.set {
		return autoKeyword
	}
	return strconv.Itoa(d.px) + "px"
}

// MarshalJSON encodes Auto as the string "auto" and explicit sizes as numbers.
func (d Dimension) MarshalJSON() ([]byte, error) {
	if !d.set {
		return []byte(`"auto"`), nil
	}
	return []byte(strconv.Itoa(d.px)), nil
}

// UnmarshalJSON accepts a number, "auto" or null.
func (d *Dimension) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = Auto()
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return d.parse(s)
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("dimension: %w", err)
	}
	return d.fromFloat(f)
}

// UnmarshalTOML accepts an integer or the string "auto".
func (d *Dimension) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case int64:
		*d = Px(int(x))
	case float64:
		return d.fromFloat(x)
	case string:
		return d.parse(x)
	default:
		return fmt.Errorf("dimension: unsupported value %v (%T)", v, v)
	}
	return nil
}

// fromFloat rounds f to whole pixels.
func (d *Dimension) fromFloat(f float64) error {
	v, ok := ScaleSize(1, f)
	if !ok {
		return fmt.Errorf("dimension: %g is out of range", f)
	}
	*d = Px(v)
	return nil
}

func (d *Dimension) parse(s string) error {
	if s == "" || s == autoKeyword {
		*d = Auto()
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("dimension: %q is neither a pixel value nor %q", s, autoKeyword)
	}
	*d = Px(n)
	return nil
}
