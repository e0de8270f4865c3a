package migration

import (
	chatdomain "github.com/purposeful/coach/internal/chat/domain"
	"github.com/purposeful/coach/internal/config"
	entitlementdomain "github.com/purposeful/coach/internal/entitlement/domain"
	identitydomain "github.com/purposeful/coach/internal/identity/domain"
	sessiondomain "github.com/purposeful/coach/internal/session/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		// mysql and sqlite are dev/self-hosted setups; let gorm derive
		// the schema from the models.
		return conn.AutoMigrate(
			&identitydomain.User{},
			&entitlementdomain.Subscription{},
			&chatdomain.Conversation{},
			&chatdomain.Message{},
			&sessiondomain.Session{},
		)
	}),
)
