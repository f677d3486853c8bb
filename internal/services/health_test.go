package services_test

import (
	"context"
	"fmt"
	"net"
	"testing"

	"github.com/localnerve/paperdb/internal/config"
	"github.com/localnerve/paperdb/internal/services"
	"go.uber.org/zap"
)

func TestHealthCheckDatabaseOnly(t *testing.T) {
	db := setupTestDB(t)
	cfg := &config.Config{DB: config.DBConfig{Type: "sqlite-pure", Database: ":memory:"}}

	result := services.HealthCheck(context.Background(), cfg, db, nil, zap.NewNop())
	if result.Status != "healthy" || result.Database != "ok" {
		t.Fatalf("Expected a healthy database, got %+v", result)
	}
	if result.Authorizer != "disabled" || result.Cache != "disabled" {
		t.Errorf("Expected unconfigured services to be disabled, got %+v", result)
	}
	if result.Details["database_type"] != "sqlite-pure" {
		t.Errorf("Expected the database type in details, got %v", result.Details)
	}
}

func TestHealthCheckUnreachableAuthorizer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	db := setupTestDB(t)
	cfg := &config.Config{
		DB:    config.DBConfig{Type: "sqlite-pure", Database: ":memory:"},
		Authz: config.AuthzConfig{URL: fmt.Sprintf("http://%s", addr)},
	}

	result := services.HealthCheck(context.Background(), cfg, db, nil, zap.NewNop())
	if result.Status != "unhealthy" || result.Authorizer != "unreachable" {
		t.Fatalf("Expected an unreachable authorizer, got %+v", result)
	}
	if result.Database != "ok" {
		t.Errorf("Expected the database to stay ok, got %q", result.Database)
	}
	if result.Details["authorizer_error"] == "" || result.ErrorMessage == "" {
		t.Errorf("Expected the failure to be reported, got %+v", result)
	}
}

func TestHealthCheckClosedDatabase(t *testing.T) {
	db := setupTestDB(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql DB: %v", err)
	}
	sqlDB.Close()

	result := services.HealthCheck(context.Background(), &config.Config{}, db, nil, zap.NewNop())
	if result.Status != "unhealthy" || result.Database != "unreachable" {
		t.Errorf("Expected an unreachable database, got %+v", result)
	}
}
