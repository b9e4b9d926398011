package app_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/orders/internal/app"
)

func TestDefaultConfig(t *testing.T) {
	cfg := app.DefaultConfig()

	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, app.StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "orders-service", cfg.KafkaGroupID)
	assert.Equal(t, 5*time.Second, cfg.CatalogTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("ORDERS_METRICS_ADDR", ":9191")
	t.Setenv("ORDERS_STORAGE_DRIVER", "postgres")
	t.Setenv("ORDERS_POSTGRES_DSN", "postgres://localhost/orders")
	t.Setenv("ORDERS_POSTGRES_AUTO_MIGRATE", "false")
	t.Setenv("ORDERS_KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("ORDERS_KAFKA_GROUP_ID", "orders-test")
	t.Setenv("ORDERS_CATALOG_MOCK", "true")
	t.Setenv("ORDERS_CATALOG_TIMEOUT", "2s")

	cfg, err := app.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9191", cfg.MetricsAddr)
	assert.Equal(t, app.StorageDriverPostgres, cfg.StorageDriver)
	assert.Equal(t, "postgres://localhost/orders", cfg.PostgresDSN)
	assert.False(t, cfg.PostgresAutoMigrate)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "orders-test", cfg.KafkaGroupID)
	assert.True(t, cfg.CatalogMock)
	assert.Equal(t, 2*time.Second, cfg.CatalogTimeout)
}

func TestLoadConfig_InvalidBool(t *testing.T) {
	t.Setenv("ORDERS_CATALOG_MOCK", "da")

	_, err := app.LoadConfig()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mut     func(cfg *app.Config)
		wantErr bool
	}{
		{
			name: "memory defaults",
			mut:  func(*app.Config) {},
		},
		{
			name: "postgres without dsn",
			mut: func(cfg *app.Config) {
				cfg.StorageDriver = app.StorageDriverPostgres
			},
			wantErr: true,
		},
		{
			name: "postgres with dsn",
			mut: func(cfg *app.Config) {
				cfg.StorageDriver = app.StorageDriverPostgres
				cfg.PostgresDSN = "postgres://localhost/orders"
			},
		},
		{
			name: "unknown driver",
			mut: func(cfg *app.Config) {
				cfg.StorageDriver = "etcd"
			},
			wantErr: true,
		},
		{
			name: "no brokers",
			mut: func(cfg *app.Config) {
				cfg.KafkaBrokers = nil
			},
			wantErr: true,
		},
		{
			name: "no group id",
			mut: func(cfg *app.Config) {
				cfg.KafkaGroupID = ""
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := app.DefaultConfig()
			tc.mut(&cfg)

			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
