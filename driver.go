package eyectl

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/mdouchement/eyectl/eyes"
	"github.com/mdouchement/logger"
)

// A Driver plays sequences of animations on a Display.
// Plays are serialized, a sequence is never interleaved with another one.
type Driver struct {
	sync      sync.Mutex
	display   Display
	handshake bool
	ack       bool
	autoReset bool
	reset     eyes.Animation
	pause     time.Duration
}

func NewDriver(cfg Config, display Display) *Driver {
	return &Driver{
		display:   display,
		handshake: cfg.Handshake,
		ack:       cfg.Acknowledge,
		autoReset: cfg.AutoReset,
		reset:     cfg.Reset,
		pause:     cfg.Pause.Duration,
	}
}

// Start waits for the display to be ready when the handshake is enabled.
func (d *Driver) Start(ctx context.Context) error {
	log := logger.LogWith(ctx)

	if !d.handshake {
		log.Debug("Handshake disabled")
		return nil
	}

	log.Info("Waiting for the display to become ready...")
	if err := d.display.Handshake(); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	log.Info("Display is ready")

	return nil
}

// Run starts the session then plays seq.
func (d *Driver) Run(ctx context.Context, seq []eyes.Animation) error {
	if err := d.Start(ctx); err != nil {
		return err
	}

	if err := d.Play(ctx, seq); err != nil {
		return err
	}

	logger.LogWith(ctx).Info("Animation cycle complete")
	return nil
}

// Play sends each animation of seq followed by a pause.
// With auto reset, the reset animation is sent after each animation and never on its own.
// Invalid acknowledgments are logged; any other error stops the sequence.
func (d *Driver) Play(ctx context.Context, seq []eyes.Animation) error {
	d.sync.Lock()
	defer d.sync.Unlock()

	log := logger.LogWith(ctx)

	for _, a := range d.Primaries(seq) {
		if err := d.send(ctx, log, a); err != nil {
			return err
		}

		if d.autoReset {
			if err := d.send(ctx, log, d.reset); err != nil {
				return err
			}
		}

		if err := sleep(ctx, d.pause); err != nil {
			return err
		}
	}

	return nil
}

// Primaries returns the animations of seq that Play sends on their own.
// With auto reset, the reset animation is dropped.
func (d *Driver) Primaries(seq []eyes.Animation) []eyes.Animation {
	if !d.autoReset {
		return seq
	}

	return slices.DeleteFunc(slices.Clone(seq), func(a eyes.Animation) bool {
		return a == d.reset
	})
}

func (d *Driver) send(ctx context.Context, log logger.Logger, a eyes.Animation) error {
	if !a.Known() {
		log.Warnf("Sending unknown animation %d as is", int(a))
	}

	log.Infof("Sending %s: %s", a, a.Frame())
	ack, err := d.display.Send(ctx, a)
	if errors.Is(err, eyes.ErrInvalidAck) {
		log.WithError(err).Warn("Received non-UTF-8 acknowledgment")
		return nil
	}
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}

	if !d.ack {
		return nil
	}

	if ack == "" {
		log.Info("No acknowledgment received")
		return nil
	}
	log.Infof("Received from display: %s", strconv.Quote(ack))

	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
