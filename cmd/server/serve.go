package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamu-thinktank/website-sub002/config"
	"github.com/tamu-thinktank/website-sub002/internal/api/handler"
	"github.com/tamu-thinktank/website-sub002/internal/api/router"
	"github.com/tamu-thinktank/website-sub002/internal/repository"
	"github.com/tamu-thinktank/website-sub002/internal/service"
	"github.com/tamu-thinktank/website-sub002/pkg/database"
	"github.com/tamu-thinktank/website-sub002/pkg/identity"
	"github.com/tamu-thinktank/website-sub002/pkg/jwt"
	applogger "github.com/tamu-thinktank/website-sub002/pkg/logger"
	"github.com/tamu-thinktank/website-sub002/pkg/metrics"
	"github.com/tamu-thinktank/website-sub002/pkg/redis"
	"github.com/tamu-thinktank/website-sub002/pkg/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务（启动前自动执行数据库迁移）",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// 1. 加载配置
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库并迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return fmt.Errorf("数据库连接失败: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	logger.Info("数据库连接成功")

	if err := database.RunMigrations(db, cfg.Database.Driver, logger); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	// 4. 可选依赖：失败时降级运行，不中断启动
	deps := service.Deps{}

	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单、限流与可用性缓存将不可用", zap.Error(err))
		rdb = nil
	} else {
		deps.Blacklist = rdb
		deps.Revoker = rdb
		deps.Cache = rdb
		defer func() { _ = rdb.Close() }()
	}

	if cfg.Firebase.ProjectID != "" || cfg.Firebase.CredentialsFile != "" || cfg.Firebase.CredentialsJSON != "" {
		verifier, err := identity.NewFirebaseVerifier(ctx, &cfg.Firebase)
		if err != nil {
			logger.Warn("Firebase 初始化失败，登录接口将不可用", zap.Error(err))
		} else {
			deps.Verifier = verifier
		}
	} else {
		logger.Warn("未配置 Firebase，登录接口将不可用")
	}

	if cfg.Storage.Bucket != "" || cfg.Storage.DriveFolderID != "" {
		uploader, err := storage.NewUploader(ctx, &cfg.Storage)
		if err != nil {
			logger.Warn("简历存储初始化失败，简历上传将不可用", zap.Error(err))
		} else {
			deps.Uploader = uploader
			if closer, ok := uploader.(interface{ Close() error }); ok {
				defer func() { _ = closer.Close() }()
			}
		}
	} else {
		logger.Warn("未配置简历存储，简历上传将不可用")
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}
	deps.Metrics = m

	// 5. 依赖注入: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, deps, logger)
	h := handler.NewHandler(cfg, svc, m, logger)

	// 6. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, m, logger)

	// 7. 启动 HTTP 服务器（优雅关闭）
	// WebSocket 长连接不受 WriteTimeout 影响（连接已被劫持）
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 8. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("HTTP 服务器异常", zap.Error(err))
		return err
	case <-ctx.Done():
		logger.Info("上下文已取消，开始优雅关闭...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务器已关闭")
	return nil
}
