package eyes

import (
	"fmt"
	"strconv"
	"strings"
)

// An Animation selects a routine pre-programmed on the display.
// Its integer value is what goes on the wire.
type Animation int

// Frame returns the bytes written on the serial link for a.
// Values outside of the known set are encoded verbatim.
func (a Animation) Frame() []byte {
	return strconv.AppendInt([]byte{CommandPrefix}, int64(a), 10)
}

func (a Animation) String() string {
	if name, ok := names[a]; ok {
		return name
	}
	return fmt.Sprintf("Animation(%d)", int(a))
}

func (a Animation) Known() bool {
	_, ok := names[a]
	return ok
}

// Animations returns all the known animations ordered by their value.
func Animations() []Animation {
	return []Animation{Wakeup, Reset, MoveRightBig, MoveLeftBig, BlinkLong, BlinkShort, Happy, Sleep, SaccadeRandom}
}

// ParseAnimation accepts a name (case insensitive, `-` or `_` separated) or an integer.
// Integers are not checked against the known set.
func ParseAnimation(s string) (Animation, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrUnknownAnimation
	}

	if v, err := strconv.Atoi(s); err == nil {
		return Animation(v), nil
	}

	name := strings.ReplaceAll(strings.ToLower(s), "-", "_")
	for a, n := range names {
		if n == name {
			return a, nil
		}
	}

	return 0, fmt.Errorf("%s: %w", strconv.Quote(s), ErrUnknownAnimation)
}
