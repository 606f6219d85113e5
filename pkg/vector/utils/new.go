package vectorutils

import (
	"fmt"
	"log/slog"

	"github.com/mnemosyneco/keep/pkg/vector"
	"github.com/mnemosyneco/keep/pkg/vector/nop"
	"github.com/mnemosyneco/keep/pkg/vector/qdrant"
)

type NewVectorDriverOpts struct {
	Provider   string
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	Logger     *slog.Logger
}

func NewVectorDriver(o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.Provider {
	case "", "none":
		return nop.NewDriver(), nil
	case "qdrant":
		return qdrant.NewDriver(qdrant.Config{
			Host:       o.Host,
			Port:       o.Port,
			APIKey:     o.APIKey,
			UseTLS:     o.UseTLS,
			Collection: o.Collection,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.Provider)
	}
}
