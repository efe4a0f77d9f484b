package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("ORDER_DERIVATION_MODE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "keyword", cfg.Inventory.OrderDerivationMode)
	assert.Equal(t, []string{"bán"}, cfg.Inventory.SaleKeywords)
	assert.Equal(t, "Khách lẻ", cfg.Inventory.WalkInCustomerName)
	assert.Equal(t, 5, cfg.Inventory.BulkDefaultMinStock)
	assert.Equal(t, developmentJWTSecret, cfg.JWT.Secret)
}

func TestLoad_ReleaseRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("GIN_MODE", "release")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownDerivationMode(t *testing.T) {
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("ORDER_DERIVATION_MODE", "magic")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_SaleKeywordsFromEnv(t *testing.T) {
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("ORDER_DERIVATION_MODE", "flag")
	t.Setenv("ORDER_SALE_KEYWORDS", "bán, sale ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "flag", cfg.Inventory.OrderDerivationMode)
	assert.Equal(t, []string{"bán", "sale"}, cfg.Inventory.SaleKeywords)
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{User: "u", Password: "p", Host: "h", Port: "5432", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", p.DSN())
}
