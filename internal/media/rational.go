package media

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Rational is an exact frame rate as numerator/denominator. The zero value
// (0/0) is legal and means "unknown": some containers report r_frame_rate
// as 0/0.
type Rational struct {
	Num int
	Den int
}

// ParseRational parses ffprobe-style rationals such as "30000/1001" or
// plain integers such as "25". A zero denominator yields 0/0 rather than
// an error.
func ParseRational(s string) (Rational, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rational{}, fmt.Errorf("empty rational")
	}

	num, den := s, "1"
	if i := strings.IndexByte(s, '/'); i >= 0 {
		num, den = s[:i], s[i+1:]
	}

	n, err := strconv.Atoi(num)
	if err != nil {
		return Rational{}, fmt.Errorf("parsing rational %q: %w", s, err)
	}
	d, err := strconv.Atoi(den)
	if err != nil {
		return Rational{}, fmt.Errorf("parsing rational %q: %w", s, err)
	}

	if d == 0 {
		return Rational{}, nil
	}
	return Rational{Num: n, Den: d}, nil
}

// IsZero reports whether the rate is unknown.
func (r Rational) IsZero() bool {
	return r.Num == 0 && r.Den == 0
}

// Spec returns the "N:D" form used for ffmpeg -framerate arguments.
func (r Rational) Spec() string {
	return fmt.Sprintf("%d:%d", r.Num, r.Den)
}

// Float returns the rate as frames per second, 0 when unknown.
func (r Rational) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// String implements fmt.Stringer.
func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// MarshalJSON encodes the rational as a two-element array, matching the
// wire format's positional tuples.
func (r Rational) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{r.Num, r.Den})
}

// UnmarshalJSON decodes a two-element array.
func (r *Rational) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	r.Num, r.Den = pair[0], pair[1]
	return nil
}

// Resolution is a frame size in pixels. (0,0) means "not yet probed".
type Resolution struct {
	Width  int
	Height int
}

// IsZero reports whether the resolution is unknown.
func (r Resolution) IsZero() bool {
	return r.Width == 0 && r.Height == 0
}

// String implements fmt.Stringer.
func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// MarshalJSON encodes the resolution as a two-element array.
func (r Resolution) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{r.Width, r.Height})
}

// UnmarshalJSON decodes a two-element array.
func (r *Resolution) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	r.Width, r.Height = pair[0], pair[1]
	return nil
}
