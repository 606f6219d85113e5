package streamutils

import (
	"fmt"
	"log/slog"

	"github.com/mnemosyneco/keep/pkg/eventstream"
	"github.com/mnemosyneco/keep/pkg/eventstream/kafka"
	"github.com/mnemosyneco/keep/pkg/eventstream/nop"
)

type NewPublisherOpts struct {
	Provider string
	Brokers  []string
	Topic    string
	Logger   *slog.Logger
}

func NewPublisher(o *NewPublisherOpts) (eventstream.Publisher, error) {
	switch o.Provider {
	case "", "none":
		return nop.NewPublisher(), nil
	case "kafka":
		return kafka.NewPublisher(kafka.Config{
			Brokers: o.Brokers,
			Topic:   o.Topic,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported event stream provider: %s", o.Provider)
	}
}
