package entitlement

import (
	"time"

	"github.com/purposeful/coach/internal/config"
	"github.com/purposeful/coach/internal/entitlement/repository"
	"github.com/purposeful/coach/internal/entitlement/service"
	"github.com/purposeful/coach/internal/tier"
	"go.uber.org/fx"
)

var Module = fx.Module("entitlement",
	fx.Provide(repository.Provide),
	fx.Provide(tier.DefaultTable),
	fx.Provide(fx.Annotate(
		trialDuration,
		fx.ResultTags(`name:"trial_duration"`),
	)),
	fx.Provide(service.NewService),
)

func trialDuration(cfg config.Config) time.Duration {
	days := cfg.TrialDurationDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}
