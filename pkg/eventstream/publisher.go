package eventstream

import "context"

// Publisher publishes optimization events to an event stream backend.
type Publisher interface {
	PublishOptimization(ctx context.Context, event *OptimizationEvent) error
	Close() error
}
