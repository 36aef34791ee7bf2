package db

import (
	"fmt"

	"github.com/linskybing/survey-platform/internal/config"
	"github.com/linskybing/survey-platform/internal/domain/form"
	"github.com/linskybing/survey-platform/internal/domain/office"
	"github.com/linskybing/survey-platform/internal/domain/registry"
	"github.com/linskybing/survey-platform/internal/domain/submission"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&office.Office{},
		&registry.Family{},
		&registry.Member{},
		&form.Form{},
		&form.FormField{},
		&form.Assignment{},
		&submission.Submission{},
		&submission.Transition{},
	}
}

// GormConfig is shared by the server, the CLI and tests.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

func Init(cfg *config.Config) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(cfg.DSN()), GormConfig())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logrus.WithField("host", cfg.DbHost).WithField("db", cfg.DbName).Info("database connected")
	return conn, nil
}

func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logrus.Info("database migrated")
	return nil
}
