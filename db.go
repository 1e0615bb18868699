package main

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"notesapp/config"
	"notesapp/repository"
)

func openDB(ctx context.Context, c config.DB) (*gorm.DB, error) {
	return repository.Open(ctx, repository.Config{
		DSN:             c.DSN,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		LogLevel:        gormLogLevel(c.LogLevel),
	})
}

// gormLogLevel maps db.log_level onto gorm's logger. Unknown names mean warn.
func gormLogLevel(s string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent", "off":
		return logger.Silent
	case "error":
		return logger.Error
	case "info", "debug":
		return logger.Info
	default:
		return logger.Warn
	}
}
