// This file is a helper for running tests with testcontainers.
// It is used by the integration and e2e tests and by the standalone cmd/testcontainers executable.
// Settings come from the environment (optionally loaded from .env files), with defaults for local runs.
//

package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/localnerve/paperdb/internal/config"
	"github.com/localnerve/paperdb/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const (
	dbNetworkAlias    = "db"
	redisNetworkAlias = "redis"
	authzNetworkAlias = "authorizer"
	paperdbImageName  = "paperdb-test:latest"
)

// TestContainers holds the running containers and their host-side endpoints
type TestContainers struct {
	Network                 *testcontainers.DockerNetwork
	DBContainer             testcontainers.Container
	RedisContainer          testcontainers.Container
	AuthorizerContainer     testcontainers.Container
	PaperDBContainer        testcontainers.Container
	PaperDBBuilderContainer testcontainers.Container

	// DB reaches the database container from the test process
	DB        config.DBConfig
	RedisAddr string
	AuthzURL  string
	BaseURL   string
}

// Config returns a configuration that reaches the containers from the test process
func (tc *TestContainers) Config() *config.Config {
	return &config.Config{
		DB:    tc.DB,
		Redis: config.RedisConfig{Addr: tc.RedisAddr, TTL: time.Minute},
		Authz: config.AuthzConfig{URL: tc.AuthzURL, ClientID: envOr("AUTHZ_CLIENT_ID", "paperdb-test")},
	}
}

// Terminate stops every started container and removes the network
func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	containers := []struct {
		name      string
		container testcontainers.Container
	}{
		{"PaperDB", tc.PaperDBContainer},
		{"PaperDB Builder", tc.PaperDBBuilderContainer},
		{"Authorizer", tc.AuthorizerContainer},
		{"Redis", tc.RedisContainer},
		{"Database", tc.DBContainer},
	}
	for _, c := range containers {
		if c.container == nil {
			continue
		}
		if err := c.container.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate %s: %v", c.name, err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// dbSettings describes the database container for a DB_TYPE
type dbSettings struct {
	image string
	port  nat.Port
	env   map[string]string
}

func getDBSettings(dbType string) dbSettings {
	switch dbType {
	case "mysql", "mariadb":
		return dbSettings{
			image: envOr("DB_IMAGE", "mariadb:11"),
			port:  "3306/tcp",
			env: map[string]string{
				"MYSQL_ROOT_PASSWORD": envOr("DB_ROOT_PASSWORD", "rootpass"),
				"MYSQL_DATABASE":      envOr("DB_DATABASE", "paperdb"),
				"MYSQL_USER":          envOr("DB_APP_USER", "paperdb"),
				"MYSQL_PASSWORD":      envOr("DB_APP_PASSWORD", "paperdb"),
			},
		}
	default:
		return dbSettings{
			image: envOr("DB_IMAGE", "postgres:16-alpine"),
			port:  "5432/tcp",
			env: map[string]string{
				"POSTGRES_USER":     envOr("DB_APP_USER", "paperdb"),
				"POSTGRES_PASSWORD": envOr("DB_APP_PASSWORD", "paperdb"),
				"POSTGRES_DB":       envOr("DB_DATABASE", "paperdb"),
			},
		}
	}
}

// CreateStoreContainers starts the database and redis containers on a new
// network and migrates the paperdb schema. dbType is postgres or mariadb.
func CreateStoreContainers(t *testing.T, dbType string) (*TestContainers, error) {
	ctx := context.Background()
	tc := &TestContainers{}

	nw, err := network.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}
	tc.Network = nw

	settings := getDBSettings(dbType)
	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:          settings.image,
			ExposedPorts:   []string{string(settings.port)},
			Env:            settings.env,
			WaitingFor:     wait.ForListeningPort(settings.port).WithStartupTimeout(90 * time.Second),
			Networks:       []string{nw.Name},
			NetworkAliases: map[string][]string{nw.Name: {dbNetworkAlias}},
		},
		Started: true,
	})
	if err != nil {
		tc.Terminate(t)
		return nil, fmt.Errorf("failed to start database: %w", err)
	}
	tc.DBContainer = dbContainer

	dbHost, err := dbContainer.Host(ctx)
	if err != nil {
		tc.Terminate(t)
		return nil, fmt.Errorf("failed to get database host: %w", err)
	}
	dbPort, err := dbContainer.MappedPort(ctx, settings.port)
	if err != nil {
		tc.Terminate(t)
		return nil, fmt.Errorf("failed to get database port: %w", err)
	}

	storeType := "postgres"
	if dbType == "mysql" || dbType == "mariadb" {
		storeType = "mysql"
	}
	tc.DB = config.DBConfig{
		Type:               storeType,
		Host:               dbHost,
		Port:               dbPort.Port(),
		Database:           envOr("DB_DATABASE", "paperdb"),
		AppUser:            envOr("DB_APP_USER", "paperdb"),
		AppPassword:        envOr("DB_APP_PASSWORD", "paperdb"),
		AppConnectionLimit: 10,
		LogLevel:           "silent",
	}

	if err := migrateStore(tc.Config()); err != nil {
		tc.Terminate(t)
		return nil, err
	}

	redisPort := nat.Port("6379/tcp")
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:          envOr("REDIS_IMAGE", "redis:7-alpine"),
			ExposedPorts:   []string{string(redisPort)},
			WaitingFor:     wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			Networks:       []string{nw.Name},
			NetworkAliases: map[string][]string{nw.Name: {redisNetworkAlias}},
		},
		Started: true,
	})
	if err != nil {
		tc.Terminate(t)
		return nil, fmt.Errorf("failed to start redis: %w", err)
	}
	tc.RedisContainer = redisContainer

	redisHost, _ := redisContainer.Host(ctx)
	mappedRedisPort, err := redisContainer.MappedPort(ctx, redisPort)
	if err != nil {
		tc.Terminate(t)
		return nil, fmt.Errorf("failed to get redis port: %w", err)
	}
	tc.RedisAddr = fmt.Sprintf("%s:%s", redisHost, mappedRedisPort.Port())

	logMessage(t, "DB_TYPE=%s DB_HOST=%s DB_PORT=%s REDIS_ADDR=%s", tc.DB.Type, tc.DB.Host, tc.DB.Port, tc.RedisAddr)
	return tc, nil
}

// migrateStore waits for the database to accept the app user, then creates the schema
func migrateStore(cfg *config.Config) error {
	var lastErr error
	for i := 0; i < 30; i++ {
		db, err := database.Connect(cfg, zap.NewNop())
		if err == nil {
			sqlDB, _ := db.DB()
			if err = sqlDB.Ping(); err == nil {
				defer database.Close(db)
				if err := database.AutoMigrate(db); err != nil {
					return fmt.Errorf("failed to migrate database: %w", err)
				}
				return nil
			}
			database.Close(db)
		}
		lastErr = err
		time.Sleep(time.Second)
	}
	return fmt.Errorf("database not ready after 30 seconds: %w", lastErr)
}

// CreateAllTestContainers starts the store, the Authorizer and the paperdb
// service. The paperdb image is built from the Dockerfile when it does not exist.
func CreateAllTestContainers(t *testing.T) (*TestContainers, error) {
	ctx := context.Background()
	dbType := envOr("DB_TYPE", "postgres")

	tc, err := CreateStoreContainers(t, dbType)
	if err != nil {
		exitWithError(t, err, "Failed to start the store")
	}
	settings := getDBSettings(dbType)
	authzDatabase := envOr("AUTHZ_DATABASE", "authorizer")

	// The Authorizer keeps its users in its own database on the same server
	var authzDBURL, authzDBType string
	switch tc.DB.Type {
	case "mysql":
		if err := performMySQLDBInit(tc, authzDatabase); err != nil {
			tc.Terminate(t)
			exitWithError(t, err, "Failed to initialize databases")
		}
		authzDBType = "mariadb"
		authzDBURL = fmt.Sprintf("root:%s@tcp(%s:%s)/%s", envOr("DB_ROOT_PASSWORD", "rootpass"), dbNetworkAlias, settings.port.Port(), authzDatabase)
	default:
		if err := performPostgresDBInit(tc, authzDatabase); err != nil {
			tc.Terminate(t)
			exitWithError(t, err, "Failed to initialize databases")
		}
		authzDBType = "postgres"
		authzDBURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", tc.DB.AppUser, tc.DB.AppPassword, dbNetworkAlias, settings.port.Port(), authzDatabase)
	}

	// Create and start the Authorizer container
	authzPortNumber := envOr("AUTHZ_PORT", "8080")
	tcpAuthzPort, err := nat.NewPort("tcp", authzPortNumber)
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to create Authorizer port")
	}
	authorizerContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        envOr("AUTHZ_IMAGE", "lakhansamani/authorizer:latest"),
			ExposedPorts: []string{string(tcpAuthzPort)},
			Env: map[string]string{
				"ENV":           "production",
				"CLIENT_ID":     envOr("AUTHZ_CLIENT_ID", "paperdb-test"),
				"PORT":          authzPortNumber,
				"DATABASE_TYPE": authzDBType,
				"DATABASE_NAME": authzDatabase,
				"DATABASE_URL":  authzDBURL,
				"ADMIN_SECRET":  envOr("AUTHZ_ADMIN_SECRET", "paperdb-admin-secret"),
				"ROLES":         "admin,user",
				"DEFAULT_ROLES": "user",
				"LOG_LEVEL":     "info",
			},
			WaitingFor:     wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(30 * time.Second),
			Networks:       []string{tc.Network.Name},
			NetworkAliases: map[string][]string{tc.Network.Name: {authzNetworkAlias}},
		},
		Started: true,
	})
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to start Authorizer")
	}
	tc.AuthorizerContainer = authorizerContainer

	authzHost, _ := authorizerContainer.Host(ctx)
	authzPort, _ := authorizerContainer.MappedPort(ctx, tcpAuthzPort)
	tc.AuthzURL = fmt.Sprintf("http://%s:%s", authzHost, authzPort.Port())
	logMessage(t, "AUTHZ_URL=%s", tc.AuthzURL)

	exists, err := imageExists(ctx, paperdbImageName)
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to check if image exists")
	}

	paperdbPortNumber := envOr("PORT", "3000")
	tcpPaperdbPort, err := nat.NewPort("tcp", paperdbPortNumber)
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to create PaperDB port")
	}

	paperdbContainerRequest := testcontainers.ContainerRequest{
		ExposedPorts: []string{string(tcpPaperdbPort)},
		Env: map[string]string{
			"DB_TYPE":                 tc.DB.Type,
			"DB_HOST":                 dbNetworkAlias,
			"DB_PORT":                 settings.port.Port(),
			"DB_DATABASE":             tc.DB.Database,
			"DB_APP_USER":             tc.DB.AppUser,
			"DB_APP_PASSWORD":         tc.DB.AppPassword,
			"DB_APP_CONNECTION_LIMIT": "10",
			"REDIS_ADDR":              redisNetworkAlias + ":6379",
			"AUTHZ_URL":               fmt.Sprintf("http://%s:%s", authzNetworkAlias, authzPortNumber),
			"AUTHZ_CLIENT_ID":         envOr("AUTHZ_CLIENT_ID", "paperdb-test"),
			"LOG_LEVEL":               envOr("LOG_LEVEL", "info"),
			"PORT":                    paperdbPortNumber,
		},
		WaitingFor: wait.ForHTTP("/metrics").WithPort(tcpPaperdbPort).WithStartupTimeout(60 * time.Second),
		Networks:   []string{tc.Network.Name},
	}

	if !exists {
		// Build the builder stage once so its layers are labelled for the reaper,
		// then build and keep the runtime image for later runs
		sessionID := uuid.New().String()
		buildArgs := map[string]*string{
			"RESOURCE_REAPER_SESSION_ID": &sessionID,
		}
		buildContext := envOr("TESTCONTAINERS_BUILD_CONTEXT", "../..")

		logMessage(t, "Image %s does not exist, building...", paperdbImageName)
		builderContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				FromDockerfile: testcontainers.FromDockerfile{
					Context:    buildContext,
					Dockerfile: "Dockerfile",
					Repo:       "paperdb-test-builder",
					Tag:        "latest",
					BuildArgs:  buildArgs,
					BuildOptionsModifier: func(opts *build.ImageBuildOptions) {
						opts.Target = "builder"
					},
					PrintBuildLog: true,
				},
			},
			Started: false,
		})
		if err != nil {
			tc.Terminate(t)
			exitWithError(t, err, "Failed to build paperdb-test-builder")
		}
		tc.PaperDBBuilderContainer = builderContainer

		repo, tag, _ := strings.Cut(paperdbImageName, ":")
		paperdbContainerRequest.FromDockerfile = testcontainers.FromDockerfile{
			Context:    buildContext,
			Dockerfile: "Dockerfile",
			Repo:       repo,
			Tag:        tag,
			KeepImage:  true,
			BuildArgs:  buildArgs,
			BuildOptionsModifier: func(opts *build.ImageBuildOptions) {
				opts.Target = "runtime"
			},
			PrintBuildLog: true,
		}
	} else {
		logMessage(t, "Image %s exists, reusing...", paperdbImageName)
		paperdbContainerRequest.Image = paperdbImageName
	}

	paperdbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: paperdbContainerRequest,
		Started:          true,
	})
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to start PaperDB")
	}
	tc.PaperDBContainer = paperdbContainer

	paperdbHost, _ := paperdbContainer.Host(ctx)
	paperdbPort, _ := paperdbContainer.MappedPort(ctx, tcpPaperdbPort)
	tc.BaseURL = fmt.Sprintf("http://%s:%s", paperdbHost, paperdbPort.Port())
	logMessage(t, "BASE_URL=%s", tc.BaseURL)

	logMessage(t, "PaperDB testcontainers started successfully")
	return tc, nil
}

// performMySQLDBInit creates the Authorizer database as root
func performMySQLDBInit(tc *TestContainers, authzDatabase string) error {
	db, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/", envOr("DB_ROOT_PASSWORD", "rootpass"), tc.DB.Host, tc.DB.Port))
	if err != nil {
		return fmt.Errorf("failed to connect to MariaDB for setup: %w", err)
	}
	defer db.Close()

	statements := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", authzDatabase),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.authorizer_users (id CHAR(36) NOT NULL PRIMARY KEY)", authzDatabase),
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%w: when executing > %s", err, stmt)
		}
	}
	return nil
}

// performPostgresDBInit creates the Authorizer database as the app user,
// which owns the server in the postgres image
func performPostgresDBInit(tc *TestContainers, authzDatabase string) error {
	db, err := database.Connect(tc.Config(), zap.NewNop())
	if err != nil {
		return fmt.Errorf("failed to connect to Postgres for setup: %w", err)
	}
	defer database.Close(db)

	var count int64
	if err := db.Raw("SELECT count(*) FROM pg_database WHERE datname = ?", authzDatabase).Scan(&count).Error; err != nil {
		return fmt.Errorf("failed to look up %s: %w", authzDatabase, err)
	}
	if count > 0 {
		return nil
	}
	if err := db.Exec(fmt.Sprintf("CREATE DATABASE %s", authzDatabase)).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", authzDatabase, err)
	}
	return nil
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
