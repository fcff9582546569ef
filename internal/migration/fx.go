package migration

import (
	"strings"

	"github.com/smallbiznis/tourbill/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg db.Config, log *zap.Logger) error {
		if strings.EqualFold(strings.TrimSpace(cfg.Type), db.TypePostgres) {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			log.Info("applying sql migrations")
			return RunMigrations(sqlDB)
		}

		log.Info("auto-migrating schema", zap.String("dialect", cfg.Type))
		return AutoMigrate(conn)
	}),
)
