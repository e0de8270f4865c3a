package chat

import (
	"github.com/purposeful/coach/internal/chat/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("chat",
	fx.Provide(repository.ProvideCounter),
)
