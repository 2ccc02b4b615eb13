package cache

import (
	"github.com/pharmaops/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ReportCacheFactory creates report caches based on configuration
type ReportCacheFactory struct {
	redisConfig           config.RedisConfig
	reportConfig          config.ReportConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ReportCacheFactoryOption is a functional option for configuring the factory
type ReportCacheFactoryOption func(*ReportCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ReportCacheFactoryOption {
	return func(f *ReportCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) ReportCacheFactoryOption {
	return func(f *ReportCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewReportCacheFactory creates a new factory
func NewReportCacheFactory(redisCfg config.RedisConfig, reportCfg config.ReportConfig, opts ...ReportCacheFactoryOption) *ReportCacheFactory {
	f := &ReportCacheFactory{
		redisConfig:           redisCfg,
		reportConfig:          reportCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateCache returns the configured cache, or nil when the TTL is zero.
// Redis is used when enabled; an unreachable Redis falls back to memory
// unless fallback is disabled.
func (f *ReportCacheFactory) CreateCache() (ReportCache, error) {
	ttl := f.reportConfig.CacheTTL
	if ttl <= 0 {
		f.logger.Info("report cache disabled")
		return nil, nil
	}

	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory report cache", zap.Duration("ttl", ttl))
		return NewInMemoryReportCache(ttl), nil
	}

	c, err := NewRedisReportCache(RedisConfig{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, ttl)
	if err == nil {
		f.logger.Info("using Redis report cache", zap.String("addr", f.redisConfig.Addr()), zap.Duration("ttl", ttl))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, err
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory report cache. "+
		"Instances will not share cached reports.",
		zap.Error(err),
	)
	return NewInMemoryReportCache(ttl), nil
}
