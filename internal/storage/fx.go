package storage

import (
	"context"

	"github.com/purposeful/coach/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("storage",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) (BlobStore, error) {
	return NewS3(context.Background(), cfg)
}
