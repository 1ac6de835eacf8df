package database

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DatabasePool 数据库连接池
// It keeps one open database per process so warm serverless invocations
// reuse the connection instead of dialing per request.
type DatabasePool struct {
	instance DatabaseInterface
	config   DatabaseConfig
	mu       sync.RWMutex
	lastUsed time.Time
}

var (
	globalPool *DatabasePool
	poolMutex  sync.Mutex

	// connections older than this are re-dialed
	poolMaxIdle = 30 * time.Minute
)

// GetDatabase 获取数据库连接（单例模式 + 连接池）
// The schema is migrated whenever a new connection is created.
func GetDatabase(ctx context.Context, config DatabaseConfig, logger *log.Logger) (DatabaseInterface, error) {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	if logger == nil {
		logger = log.Default()
	}

	// 检查是否需要创建新的连接池
	if globalPool == nil || shouldRecreateConnection(ctx, globalPool, config, logger) {
		logger.Info("creating new database connection", "driver", config.Driver)

		// 关闭旧连接（如果存在）
		if globalPool != nil && globalPool.instance != nil {
			globalPool.instance.Close()
		}
		globalPool = nil

		instance, err := NewDatabase(ctx, config, logger)
		if err != nil {
			return nil, err
		}
		if err := instance.Migrate(ctx); err != nil {
			instance.Close()
			return nil, err
		}
		globalPool = &DatabasePool{
			instance: instance,
			config:   config,
			lastUsed: time.Now(),
		}
	} else {
		// 更新最后使用时间
		globalPool.mu.Lock()
		globalPool.lastUsed = time.Now()
		globalPool.mu.Unlock()

		logger.Debug("reusing existing database connection")
	}

	return globalPool.instance, nil
}

// shouldRecreateConnection 判断是否需要重新创建连接
func shouldRecreateConnection(ctx context.Context, pool *DatabasePool, newConfig DatabaseConfig, logger *log.Logger) bool {
	if pool == nil || pool.instance == nil {
		return true
	}

	// 检查配置是否发生变化
	if pool.config != newConfig {
		logger.Info("database configuration changed, recreating connection")
		return true
	}

	// 检查连接是否过期
	pool.mu.RLock()
	expired := time.Since(pool.lastUsed) > poolMaxIdle
	pool.mu.RUnlock()

	if expired {
		logger.Info("database connection expired, recreating")
		return true
	}

	// 检查连接健康状态
	if err := pool.instance.HealthCheck(ctx); err != nil {
		logger.Warn("database health check failed, recreating", "err", err)
		return true
	}

	return false
}

// ClosePool closes the pooled connection, if any.
func ClosePool() error {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	if globalPool == nil {
		return nil
	}
	err := globalPool.instance.Close()
	globalPool = nil
	return err
}

// GetConnectionStats 获取连接池统计信息
func GetConnectionStats() map[string]interface{} {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	if globalPool == nil {
		return map[string]interface{}{
			"status":    "no_connection",
			"last_used": nil,
		}
	}

	globalPool.mu.RLock()
	lastUsed := globalPool.lastUsed
	globalPool.mu.RUnlock()

	return map[string]interface{}{
		"status":    "connected",
		"driver":    globalPool.config.Driver,
		"last_used": lastUsed.Format(time.RFC3339),
		"age":       time.Since(lastUsed).String(),
	}
}
