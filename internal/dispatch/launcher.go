package dispatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/voxdial/voxdial/internal/resolve"
)

// Error wraps a conversation engine failure. The call was never placed; the
// engine, not this layer, decides whether placing it again is safe.
type Error struct {
	Cause error
}

func (e Error) Error() string {
	return fmt.Sprintf("conversation engine dispatch failed: %v", e.Cause)
}

func (e Error) Unwrap() error {
	return e.Cause
}

// Launcher hands a resolved configuration to the engine and translates the
// outcome. Launch is the only operation in the request pipeline with an
// externally observable side effect.
type Launcher struct {
	engine Engine
	logger *zap.Logger
}

// NewLauncher constructs a Launcher.
func NewLauncher(engine Engine, logger *zap.Logger) *Launcher {
	return &Launcher{engine: engine, logger: logger}
}

// Launch dispatches cfg. Engine failures come back as Error; there is no
// retry here.
func (l *Launcher) Launch(ctx context.Context, cfg resolve.ResolvedConfiguration) (ExecutionDescriptor, error) {
	desc, err := l.engine.Start(ctx, cfg)
	if err != nil {
		l.logger.Error("call dispatch failed",
			zap.String("to_phone", cfg.ToPhone),
			zap.Error(err),
		)
		return ExecutionDescriptor{}, Error{Cause: err}
	}

	l.logger.Info("call dispatched",
		zap.String("to_phone", cfg.ToPhone),
		zap.String("execution_id", desc.ExecutionID),
		zap.String("telephony_id", desc.TelephonyID),
	)
	return desc, nil
}
