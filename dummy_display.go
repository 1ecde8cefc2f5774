package eyectl

import (
	"context"
	"slices"
	"sync"

	"github.com/mdouchement/eyectl/eyes"
	"github.com/mdouchement/logger"
)

// A DummyDisplay should only be used for dev & tests.
// It records the frames instead of writing them.
type DummyDisplay struct {
	sync     sync.Mutex
	greeting string
	frames   []string
	log      logger.Logger
}

func NewDummyDisplay() *DummyDisplay {
	return &DummyDisplay{
		greeting: eyes.ReadySignal,
	}
}

func (d *DummyDisplay) SetLogger(l logger.Logger) {
	d.log = l
}

func (d *DummyDisplay) Close() error {
	return nil
}

func (d *DummyDisplay) Handshake() error {
	if d.greeting != eyes.ReadySignal {
		return &eyes.HandshakeError{Got: d.greeting}
	}
	return nil
}

func (d *DummyDisplay) Send(ctx context.Context, a eyes.Animation) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	d.sync.Lock()
	defer d.sync.Unlock()

	frame := string(a.Frame())
	d.frames = append(d.frames, frame)
	if d.log != nil {
		d.log.Debugf("Dummy display got %s", frame)
	}

	return "OK " + frame, nil
}

// Frames returns the frames received so far.
func (d *DummyDisplay) Frames() []string {
	d.sync.Lock()
	defer d.sync.Unlock()

	return slices.Clone(d.frames)
}
