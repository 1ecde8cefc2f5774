package eyectl

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/mdouchement/eyectl/eyes"
)

// scriptedDisplay returns a canned error for some animations.
type scriptedDisplay struct {
	*DummyDisplay
	errs map[eyes.Animation]error
}

func (d *scriptedDisplay) Send(ctx context.Context, a eyes.Animation) (string, error) {
	if _, err := d.DummyDisplay.Send(ctx, a); err != nil {
		return "", err
	}
	return "", d.errs[a]
}

func testConfig() Config {
	cfg := Default()
	cfg.Pause = Duration{}
	return cfg
}

func TestPlayAllAnimations(t *testing.T) {
	display := NewDummyDisplay()
	driver := NewDriver(testConfig(), display)

	if err := driver.Run(testContext(), AllAnimations()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{
		"A0", "A1",
		"A2", "A1",
		"A3", "A1",
		"A4", "A1",
		"A5", "A1",
		"A6", "A1",
		"A7", "A1",
		"A8", "A1",
	}
	if frames := display.Frames(); !slices.Equal(frames, expected) {
		t.Errorf("expected %v, got %v", expected, frames)
	}
}

func TestPlayResetNeverPrimary(t *testing.T) {
	display := NewDummyDisplay()
	driver := NewDriver(testConfig(), display)

	seq := []eyes.Animation{0, 1, 2, 3, 4, 5, 6, 7}
	if err := driver.Play(testContext(), seq); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	frames := display.Frames()
	if len(frames) != 14 {
		t.Fatalf("expected 14 frames, got %v", frames)
	}
	if !slices.Equal(frames[:6], []string{"A0", "A1", "A2", "A1", "A3", "A1"}) {
		t.Errorf("unexpected trace start %v", frames[:6])
	}
	if !slices.Equal(frames[12:], []string{"A7", "A1"}) {
		t.Errorf("unexpected trace end %v", frames[12:])
	}

	for i := 0; i < len(frames); i += 2 {
		if frames[i] == "A1" {
			t.Errorf("reset sent as primary command at %d", i)
		}
		if frames[i+1] != "A1" {
			t.Errorf("expected reset after %s, got %s", frames[i], frames[i+1])
		}
	}
}

func TestPlayWithoutAutoReset(t *testing.T) {
	cfg := testConfig()
	cfg.AutoReset = false
	cfg.Handshake = false
	display := NewDummyDisplay()
	display.greeting = ""

	seq := []eyes.Animation{eyes.Happy, eyes.Reset, eyes.Sleep, eyes.Animation(12)}
	if err := NewDriver(cfg, display).Run(testContext(), seq); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"A6", "A1", "A7", "A12"}
	if frames := display.Frames(); !slices.Equal(frames, expected) {
		t.Errorf("expected %v, got %v", expected, frames)
	}
}

func TestPrimaries(t *testing.T) {
	seq := []eyes.Animation{eyes.Reset, eyes.Happy, eyes.Reset, eyes.Sleep, eyes.Reset}

	cfg := testConfig()
	primaries := NewDriver(cfg, NewDummyDisplay()).Primaries(seq)
	if expected := []eyes.Animation{eyes.Happy, eyes.Sleep}; !slices.Equal(primaries, expected) {
		t.Errorf("expected %v, got %v", expected, primaries)
	}
	if seq[0] != eyes.Reset {
		t.Error("seq must not be modified")
	}

	if primaries := NewDriver(cfg, NewDummyDisplay()).Primaries([]eyes.Animation{eyes.Reset}); len(primaries) != 0 {
		t.Errorf("expected no primaries, got %v", primaries)
	}

	cfg.AutoReset = false
	primaries = NewDriver(cfg, NewDummyDisplay()).Primaries(seq)
	if !slices.Equal(primaries, seq) {
		t.Errorf("expected %v, got %v", seq, primaries)
	}
}

func TestRunHandshakeMismatch(t *testing.T) {
	for _, greeting := range []string{"", "BOOT", "READY?"} {
		t.Run(fmt.Sprintf("%q", greeting), func(t *testing.T) {
			display := NewDummyDisplay()
			display.greeting = greeting

			err := NewDriver(testConfig(), display).Run(testContext(), AllAnimations())

			var herr *eyes.HandshakeError
			if !errors.As(err, &herr) {
				t.Fatalf("expected HandshakeError, got %v", err)
			}
			if herr.Got != greeting {
				t.Errorf("expected %q, got %q", greeting, herr.Got)
			}
			if frames := display.Frames(); len(frames) != 0 {
				t.Errorf("no frame expected, got %v", frames)
			}
		})
	}
}

func TestPlayInvalidAckContinues(t *testing.T) {
	display := &scriptedDisplay{
		DummyDisplay: NewDummyDisplay(),
		errs: map[eyes.Animation]error{
			eyes.BlinkLong: fmt.Errorf("blink_long: %w", eyes.ErrInvalidAck),
		},
	}

	seq := []eyes.Animation{eyes.BlinkLong, eyes.Happy}
	if err := NewDriver(testConfig(), display).Play(testContext(), seq); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"A4", "A1", "A6", "A1"}
	if frames := display.Frames(); !slices.Equal(frames, expected) {
		t.Errorf("expected %v, got %v", expected, frames)
	}
}

func TestPlayWriteErrorAborts(t *testing.T) {
	unplugged := errors.New("device unplugged")
	display := &scriptedDisplay{
		DummyDisplay: NewDummyDisplay(),
		errs:         map[eyes.Animation]error{eyes.MoveRightBig: unplugged},
	}

	seq := []eyes.Animation{eyes.Wakeup, eyes.MoveRightBig, eyes.MoveLeftBig}
	err := NewDriver(testConfig(), display).Play(testContext(), seq)
	if !errors.Is(err, unplugged) {
		t.Fatalf("expected write error, got %v", err)
	}

	expected := []string{"A0", "A1", "A2"}
	if frames := display.Frames(); !slices.Equal(frames, expected) {
		t.Errorf("expected %v, got %v", expected, frames)
	}
}

func TestPlayPauseCanceled(t *testing.T) {
	cfg := testConfig()
	cfg.Pause = Duration{Duration: time.Hour}
	display := NewDummyDisplay()

	ctx, cancel := context.WithCancel(testContext())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := NewDriver(cfg, display).Play(ctx, AllAnimations())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	expected := []string{"A0", "A1"}
	if frames := display.Frames(); !slices.Equal(frames, expected) {
		t.Errorf("expected %v, got %v", expected, frames)
	}
}
