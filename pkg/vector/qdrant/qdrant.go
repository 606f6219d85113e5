// Package qdrant provides a Qdrant-backed vector driver that mirrors memory
// deletions into a Qdrant collection.
package qdrant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/qdrant/go-client/qdrant"

	"github.com/mnemosyneco/keep/pkg/vector"
)

// Config holds the Qdrant connection settings.
type Config struct {
	// Host is the Qdrant gRPC host.
	Host string

	// Port is the Qdrant gRPC port (6334 by default deployments).
	Port int

	// APIKey authenticates against Qdrant cloud. Empty for local instances.
	APIKey string

	// UseTLS enables transport security; required when an API key is set.
	UseTLS bool

	// Collection is the collection holding the memory embeddings. Point IDs
	// are the memory record IDs.
	Collection string
}

func (c Config) validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: empty host", vector.ErrConfig)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", vector.ErrConfig, c.Port)
	}

	if c.Collection == "" {
		return fmt.Errorf("%w: empty collection", vector.ErrConfig)
	}

	return nil
}

// Driver implements vector.Driver against a Qdrant collection.
type Driver struct {
	client     *qdrant.Client
	collection string
	logger     *slog.Logger
}

// NewDriver connects to Qdrant. The config is validated fail-fast; connection
// problems surface wrapped in vector.ErrConnection.
func NewDriver(cfg Config, logger *slog.Logger) (*Driver, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", vector.ErrConnection, err)
	}

	return &Driver{client: client, collection: cfg.Collection, logger: logger}, nil
}

// Delete removes the points whose IDs match the given memory IDs. Unknown IDs
// are skipped by Qdrant.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	points := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		points[i] = qdrant.NewID(id)
	}

	_, err := d.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: d.collection,
		Points:         qdrant.NewPointsSelector(points...),
	})
	if err != nil {
		return fmt.Errorf("deleting %d points from %s: %w", len(ids), d.collection, err)
	}

	d.logger.Debug("mirrored deletions to vector store",
		"collection", d.collection,
		"count", len(ids),
	)

	return nil
}

// Close releases the gRPC connection.
func (d *Driver) Close() error {
	return d.client.Close()
}
