// Package app 把配置翻译成 router.Deps，两个进程共用
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"bytebazaar/internal/core/auth"
	"bytebazaar/internal/core/cache"
	"bytebazaar/internal/core/config"
	"bytebazaar/internal/core/database"
	"bytebazaar/internal/core/events"
	"bytebazaar/internal/core/logger"
	"bytebazaar/internal/core/storage"
	"bytebazaar/internal/repo"
	"bytebazaar/internal/transport/http/router"
)

// Build 按配置打开存储、缓存、消息等外部依赖；返回的 cleanup 逆序释放
func Build(ctx context.Context, cfg *config.Config, l *zap.Logger) (router.Deps, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (router.Deps, func(), error) {
		cleanup()
		return router.Deps{}, func() {}, err
	}

	repos, closeDB, err := openRepos(ctx, cfg, l)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeDB)

	// redis 可选：未配置时分类不缓存，吊销表落内存
	var c *cache.Cache
	var deny auth.Denylist = auth.NewMemoryDenylist()
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := c.RDB.Ping(ctx).Err(); err != nil {
			_ = c.Close()
			return fail(fmt.Errorf("redis ping: %w", err))
		}
		deny = auth.NewRedisDenylist(c.RDB)
		closers = append(closers, func() { _ = c.Close() })
		l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	} else {
		// 吊销表只在本进程可见，api 与 admin 之间不共享
		l.Warn("redis not configured: token denylist is per-process")
	}

	store, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return fail(err)
	}
	l.Info("storage ready", zap.String("driver", cfg.Storage.Driver))

	var pub events.Publisher = events.Noop{}
	if cfg.AMQP.URL != "" {
		p, err := events.NewAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return fail(fmt.Errorf("amqp: %w", err))
		}
		pub = p
		closers = append(closers, func() { _ = p.Close() })
		l.Info("amqp connected", zap.String("exchange", cfg.AMQP.Exchange))
	}

	mode := "debug"
	if cfg.App.IsProd() {
		mode = "release"
	}

	d := router.Deps{
		Log:   l,
		Repos: repos,
		Tokens: auth.NewTokenService(
			cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.Issuer,
			time.Duration(cfg.JWT.AccessTokenTTLMin)*time.Minute,
			time.Duration(cfg.JWT.RefreshTokenTTLDay)*24*time.Hour,
		),
		Deny:         deny,
		Cache:        c,
		Store:        store,
		Events:       pub,
		TmpDir:       cfg.Storage.TmpDir,
		SecureCookie: cfg.App.IsProd(),
		Mode:         mode,
		ClientURLs:   cfg.CORS.ClientURLs,
		Limits: router.Limits{
			RPS:         cfg.Limits.RPS,
			Burst:       cfg.Limits.Burst,
			PerIPRPS:    cfg.Limits.PerIPRPS,
			PerIPBurst:  cfg.Limits.PerIPBurst,
			Concurrency: cfg.Limits.Concurrency,
			MaxBodyMB:   cfg.Limits.MaxBodyMB,
			Timeout:     time.Duration(cfg.Limits.TimeoutSec) * time.Second,
		},
	}
	return d, cleanup, nil
}

func openRepos(ctx context.Context, cfg *config.Config, l *zap.Logger) (repo.Set, func(), error) {
	if cfg.DB.Driver == "mongo" {
		return openMongo(ctx, cfg, l)
	}
	db, err := openGorm(cfg, l)
	if err != nil {
		return repo.Set{}, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if cfg.DB.AutoMigrate {
		if err := repo.AutoMigrate(db); err != nil {
			closeDB()
			return repo.Set{}, nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver), zap.String("dsn", database.MaskDSN(cfg.DB.DSN)))
	return repo.NewGormSet(db), closeDB, nil
}

func openGorm(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	w, err := logger.ToStdLogger(l.Named("gorm"), zapcore.WarnLevel)
	if err != nil {
		return nil, err
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Writer:             w,
	})
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	return db, nil
}

func openMongo(ctx context.Context, cfg *config.Config, l *zap.Logger) (repo.Set, func(), error) {
	cli, db, err := database.NewMongo(ctx, database.MongoOpts{
		URI:         cfg.DB.DSN,
		Database:    cfg.DB.Name,
		MaxPoolSize: uint64(max(cfg.DB.MaxOpenConns, 0)),
	})
	if err != nil {
		return repo.Set{}, nil, err
	}
	closeDB := func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = cli.Disconnect(sctx)
	}
	if err := repo.EnsureIndexes(ctx, db); err != nil {
		closeDB()
		return repo.Set{}, nil, fmt.Errorf("mongo indexes: %w", err)
	}
	l.Info("database connected", zap.String("driver", "mongo"), zap.String("db", cfg.DB.Name))
	return repo.NewMongoSet(db), closeDB, nil
}

func openStorage(ctx context.Context, s config.Storage) (storage.Provider, error) {
	switch s.Driver {
	case "", "local":
		return storage.NewLocal(s.LocalDir, s.PublicURL)
	case "s3":
		return storage.NewS3(ctx, storage.S3Opts{
			Bucket:          s.Bucket,
			Region:          s.Region,
			Endpoint:        s.Endpoint,
			AccessKey:       s.AccessKey,
			SecretKey:       s.SecretKey,
			CredentialsFile: s.CredentialsFile,
			PublicURL:       s.PublicURL,
		})
	default:
		return nil, errors.New("unsupported storage.driver " + s.Driver)
	}
}
