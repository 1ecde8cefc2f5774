package schedule

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/mdouchement/eyectl"
	"github.com/mdouchement/eyectl/eyes"
	"github.com/mdouchement/logger"
)

type recorder struct {
	sync  sync.Mutex
	plays [][]eyes.Animation
	err   error
}

func (r *recorder) Play(_ context.Context, seq []eyes.Animation) error {
	r.sync.Lock()
	defer r.sync.Unlock()

	r.plays = append(r.plays, seq)
	return r.err
}

func (r *recorder) count() int {
	r.sync.Lock()
	defer r.sync.Unlock()

	return len(r.plays)
}

func testContext() context.Context {
	h := logger.NewSlogTextHandler(io.Discard, &logger.SlogTextOption{Level: slog.LevelDebug})
	return logger.WithLogger(context.Background(), logger.WrapSlogHandler(h))
}

func TestNew(t *testing.T) {
	s, err := New(&recorder{}, []*eyectl.Schedule{
		{Spec: "0 7 * * *", Animations: []eyes.Animation{eyes.Wakeup}},
		{Spec: "@hourly", Animations: []eyes.Animation{eyes.BlinkShort}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", s.Len())
	}
}

func TestNewInvalidSpec(t *testing.T) {
	_, err := New(&recorder{}, []*eyectl.Schedule{{Spec: "every morning"}})
	if err == nil {
		t.Error("expected an error")
	}
}

func TestExecute(t *testing.T) {
	r := &recorder{err: errors.New("device unplugged")}
	s, err := New(r, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.ctx = testContext()

	seq := []eyes.Animation{eyes.Sleep}
	s.execute(&eyectl.Schedule{Spec: "0 22 * * *", Animations: seq})

	if len(r.plays) != 1 || !slices.Equal(r.plays[0], seq) {
		t.Errorf("unexpected plays %v", r.plays)
	}
}

func TestStart(t *testing.T) {
	r := &recorder{}
	s, err := New(r, []*eyectl.Schedule{
		{Spec: "@every 1s", Animations: []eyes.Animation{eyes.Happy}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.Start(testContext())
	defer s.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for r.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	if r.count() == 0 {
		t.Error("schedule did not run")
	}
}
