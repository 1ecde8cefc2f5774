package eyectl

import (
	"context"

	"github.com/mdouchement/eyectl/eyes"
	"github.com/mdouchement/logger"
)

// A Display is what the Driver talks to.
type Display interface {
	Handshake() error
	Send(ctx context.Context, a eyes.Animation) (string, error)
}

// A Device is a Display owning a connection.
type Device interface {
	Display
	SetLogger(l logger.Logger)
	Close() error
}
