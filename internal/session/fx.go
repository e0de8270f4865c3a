package session

import (
	"github.com/purposeful/coach/internal/session/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("session",
	fx.Provide(repository.Provide),
)
