package eyectl

import (
	"context"
	"io"
	"log/slog"

	"github.com/mdouchement/logger"
)

func testContext() context.Context {
	h := logger.NewSlogTextHandler(io.Discard, &logger.SlogTextOption{
		Level:            slog.LevelDebug,
		DisableTimestamp: true,
	})
	return logger.WithLogger(context.Background(), logger.WrapSlogHandler(h))
}
