// Package testdb starts a disposable MariaDB for integration tests and local development.
// It needs a reachable docker daemon.
package testdb

import (
	"context"
	"fmt"
	"time"

	"github.com/localnerve/tuskfish/data"
	"github.com/localnerve/tuskfish/internal/config"
	"github.com/localnerve/tuskfish/internal/database"
	"github.com/localnerve/tuskfish/internal/logging"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DefaultImage is used when Options.Image is empty.
const DefaultImage = "mariadb:11"

const mariadbPort = "3306/tcp"

// Options configure the container.
type Options struct {
	Image    string
	Database string
	User     string
	Password string
}

func (o *Options) defaults() {
	if o.Image == "" {
		o.Image = DefaultImage
	}
	if o.Database == "" {
		o.Database = "tuskfish"
	}
	if o.User == "" {
		o.User = "tuskfish"
	}
	if o.Password == "" {
		o.Password = "tuskfish"
	}
}

// MariaDB is a running container with the Tuskfish tables created.
type MariaDB struct {
	Container testcontainers.Container
	Config    *config.Config
}

// StartMariaDB starts the container, waits for it to accept connections and runs the
// embedded DDL. The returned Config points at the mapped host port.
func StartMariaDB(ctx context.Context, opts Options) (*MariaDB, error) {
	opts.defaults()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        opts.Image,
			ExposedPorts: []string{mariadbPort},
			Env: map[string]string{
				"MARIADB_ROOT_PASSWORD": opts.Password + "-root",
				"MARIADB_DATABASE":      opts.Database,
				"MARIADB_USER":          opts.User,
				"MARIADB_PASSWORD":      opts.Password,
			},
			WaitingFor: wait.ForListeningPort(mariadbPort).WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start MariaDB: %w", err)
	}
	m := &MariaDB{Container: container}

	host, err := container.Host(ctx)
	if err != nil {
		m.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, mariadbPort)
	if err != nil {
		m.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	m.Config = &config.Config{
		DBType:            "mariadb",
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        opts.Database,
		DBUser:            opts.User,
		DBPassword:        opts.Password,
		DBConnectionLimit: 5,
	}

	if err := m.initSchema(ctx); err != nil {
		m.Terminate(ctx)
		return nil, err
	}

	logging.Info().Str("host", host).Str("port", port.Port()).Str("database", opts.Database).Msg("MariaDB container ready")
	return m, nil
}

// initSchema runs the DDL, retrying the first connection while the server finishes booting.
func (m *MariaDB) initSchema(ctx context.Context) error {
	db, err := database.Connect(m.Config)
	if err != nil {
		return err
	}
	defer database.Close(db)

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	for i := 0; i < 30; i++ {
		if err = sqlDB.PingContext(ctx); err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		return fmt.Errorf("MariaDB not ready after 30 seconds: %w", err)
	}

	if err := database.ExecScript(ctx, db, data.InitdbMariaDBTables); err != nil {
		return fmt.Errorf("failed to execute tables init sql: %w", err)
	}
	return nil
}

// Terminate stops and removes the container.
func (m *MariaDB) Terminate(ctx context.Context) {
	if m.Container == nil {
		return
	}
	if err := m.Container.Terminate(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to terminate MariaDB")
	}
}
