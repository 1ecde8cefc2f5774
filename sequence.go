package eyectl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/shlex"
	"github.com/mdouchement/eyectl/eyes"
)

// AllAnimations is the default sequence.
// The reset animation is part of it and gets skipped when the driver resets automatically.
func AllAnimations() []eyes.Animation {
	return eyes.Animations()
}

// ParseSequence parses animations separated by spaces or commas, e.g. `wakeup 2,3 "blink_long"`.
// Words starting with `#` comment the rest of the line.
func ParseSequence(s string) ([]eyes.Animation, error) {
	words, err := shlex.Split(s)
	if err != nil {
		return nil, err
	}

	var seq []eyes.Animation
	for _, w := range words {
		for _, token := range strings.Split(w, ",") {
			if token == "" {
				continue
			}

			a, err := eyes.ParseAnimation(token)
			if err != nil {
				return nil, err
			}
			seq = append(seq, a)
		}
	}

	return seq, nil
}

// ReadSequence parses a sequence spread over several lines.
func ReadSequence(r io.Reader) ([]eyes.Animation, error) {
	var seq []eyes.Animation

	scanner := bufio.NewScanner(r)
	for i := 1; scanner.Scan(); i++ {
		animations, err := ParseSequence(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		seq = append(seq, animations...)
	}

	return seq, scanner.Err()
}

func ReadSequenceFile(path string) ([]eyes.Animation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seq, err := ReadSequence(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return seq, nil
}
