package services

import (
	"context"
	"fmt"
	"time"

	"github.com/localnerve/paperdb/internal/config"
	"github.com/localnerve/paperdb/internal/utils"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Authorizer   string            `json:"authorizer"`
	Cache        string            `json:"cache"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(component, detailKey string, err error) {
	r.Status = "unhealthy"
	r.Details[detailKey] = err.Error()
	msg := fmt.Sprintf("%s check failed: %v", component, err)
	if r.ErrorMessage == "" {
		r.ErrorMessage = msg
	} else {
		r.ErrorMessage += "; " + msg
	}
}

// HealthCheck checks the database, the Authorizer (when configured) and the
// Redis cache (when rdb is not nil).
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *goredis.Client, logger *zap.Logger) HealthCheckResult {
	result := HealthCheckResult{
		Status:     "healthy",
		Authorizer: "disabled",
		Cache:      "disabled",
		Details:    make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	// Check database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Database = "error"
		result.fail("database", "database_error", err)
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.Database = "unreachable"
		result.fail("database", "database_ping_error", err)
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DB.Type
		result.Details["database_name"] = cfg.DB.Database
	}

	// Check Authorizer connectivity
	if cfg.Authz.URL != "" {
		if err := utils.PingService(ctx, cfg.Authz.URL, utils.AuthorizerPingTimeout); err != nil {
			result.Authorizer = "unreachable"
			result.fail("authorizer", "authorizer_error", err)
		} else {
			result.Authorizer = "ok"
			result.Details["authorizer_url"] = cfg.Authz.URL
		}
	}

	if rdb != nil {
		if err := rdb.Ping(ctx).Err(); err != nil {
			result.Cache = "unreachable"
			result.fail("redis", "redis_error", err)
		} else {
			result.Cache = "ok"
		}
	}

	if result.Status == "healthy" {
		logger.Debug("health check passed")
	} else {
		logger.Warn("health check failed", zap.String("error", result.ErrorMessage))
	}

	return result
}
