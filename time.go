package eyectl

import (
	"strconv"
	"time"

	"go.yaml.in/yaml/v4"
)

// A Duration is written as a Go duration (`500ms`, `10s`) or as a plain number of milliseconds.
type Duration struct {
	time.Duration
}

func Millis(ms int) Duration {
	return Duration{Duration: time.Duration(ms) * time.Millisecond}
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var str string
	err := value.Decode(&str)
	if err != nil {
		return err
	}

	if str == "" {
		return nil
	}

	if ms, err := strconv.Atoi(str); err == nil {
		*d = Millis(ms)
		return nil
	}

	d.Duration, err = time.ParseDuration(str)
	return err
}
