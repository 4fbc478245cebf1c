// Package vectorutils builds vector drivers from configuration.
package vectorutils

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/repomem/pkg/vector"
	"github.com/papercomputeco/repomem/pkg/vector/chroma"
	"github.com/papercomputeco/repomem/pkg/vector/inmemory"
	"github.com/papercomputeco/repomem/pkg/vector/pgvector"
	"github.com/papercomputeco/repomem/pkg/vector/qdrant"
	"github.com/papercomputeco/repomem/pkg/vector/sqlitevec"
)

type NewVectorDriverOpts struct {
	// ProviderType is one of "memory", "sqlite", "chroma", "qdrant", "postgres".
	ProviderType string

	// Target is the Chroma URL, Qdrant address or PostgreSQL connection string.
	Target string

	SQLitePath string
	Dimensions uint
	Logger     *slog.Logger
}

func NewVectorDriver(ctx context.Context, o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case "", "memory":
		return inmemory.NewDriver(), nil
	case "sqlite":
		if o.SQLitePath == "" {
			return nil, errors.New("sqlite vector store requires a database path")
		}
		return sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     o.SQLitePath,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "chroma":
		return chroma.NewDriver(chroma.Config{
			URL: o.Target,
		}, o.Logger)
	case "qdrant":
		return qdrant.NewDriver(qdrant.Config{
			Address:    o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "postgres":
		return pgvector.NewDriver(ctx, pgvector.Config{
			ConnString: o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
