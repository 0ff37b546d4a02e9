package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tamu-thinktank/website-sub002/config"
	"github.com/tamu-thinktank/website-sub002/pkg/database"
	applogger "github.com/tamu-thinktank/website-sub002/pkg/logger"
)

var rollbackSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "数据库迁移",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "执行全部未应用的迁移",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(cfg *config.Config, db *gorm.DB, logger *zap.Logger) error {
			return database.RunMigrations(db, cfg.Database.Driver, logger)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "回滚迁移（仅 postgres）",
	RunE: func(cmd *cobra.Command, args []string) error {
		if rollbackSteps <= 0 {
			return fmt.Errorf("steps 必须大于 0")
		}
		return withDB(func(cfg *config.Config, db *gorm.DB, logger *zap.Logger) error {
			if cfg.Database.Driver == "sqlite" {
				return fmt.Errorf("sqlite 不支持回滚迁移")
			}
			return database.RollbackMigrations(db, rollbackSteps, logger)
		})
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&rollbackSteps, "steps", 1, "回滚步数")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}

// withDB 加载配置、日志与数据库后执行 fn
func withDB(fn func(cfg *config.Config, db *gorm.DB, logger *zap.Logger) error) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return fmt.Errorf("数据库连接失败: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	return fn(cfg, db, logger)
}
