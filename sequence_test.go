package eyectl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/mdouchement/eyectl/eyes"
)

func TestParseSequence(t *testing.T) {
	seq, err := ParseSequence(`wakeup 2,3 "blink_long" 'happy' 7 # sleep`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []eyes.Animation{eyes.Wakeup, eyes.MoveRightBig, eyes.MoveLeftBig, eyes.BlinkLong, eyes.Happy, eyes.Sleep}
	if !slices.Equal(seq, expected) {
		t.Errorf("expected %v, got %v", expected, seq)
	}
}

func TestParseSequenceErrors(t *testing.T) {
	if _, err := ParseSequence("wakeup frown"); !errors.Is(err, eyes.ErrUnknownAnimation) {
		t.Errorf("expected ErrUnknownAnimation, got %v", err)
	}
	if _, err := ParseSequence(`"wakeup`); err == nil {
		t.Error("expected an error on unterminated quote")
	}
}

func TestReadSequence(t *testing.T) {
	r := strings.NewReader(`
# Morning
wakeup
blink_short blink_short

happy, 8
`)

	seq, err := ReadSequence(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []eyes.Animation{eyes.Wakeup, eyes.BlinkShort, eyes.BlinkShort, eyes.Happy, eyes.SaccadeRandom}
	if !slices.Equal(seq, expected) {
		t.Errorf("expected %v, got %v", expected, seq)
	}
}

func TestReadSequenceFileLineError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seq.txt")
	if err := os.WriteFile(path, []byte("wakeup\nhappy\nwink\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := ReadSequenceFile(path)
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("expected an error on line 3, got %v", err)
	}
}
