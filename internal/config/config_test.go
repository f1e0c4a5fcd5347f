package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaulted() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func TestApplyDefaults_ProducesValidConfig(t *testing.T) {
	cfg := defaulted()
	assert.NoError(t, cfg.Validate())
}

func TestApplyDefaults_InterestRates(t *testing.T) {
	cfg := defaulted()
	// 8% statutory + 4.75% base reproduces the 12.75% combined B2B figure.
	assert.Equal(t, 8.0, cfg.Interest.StatutoryRatePercent)
	assert.Equal(t, 4.75, cfg.Interest.BaseRatePercent)
	assert.Equal(t, 8.0, cfg.Interest.CountyCourtRatePercent)
}

func TestApplyDefaults_ProtocolOffsetsAscend(t *testing.T) {
	cfg := defaulted()
	assert.Less(t, cfg.Protocol.FirstChaserAfterDays, cfg.Protocol.FinalDemandAfterDays)
	assert.Less(t, cfg.Protocol.FinalDemandAfterDays, cfg.Protocol.LBASuggestedAfterDays)
	assert.Greater(t, cfg.Protocol.ResponseWindowIndividual, cfg.Protocol.ResponseWindowCompany)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"missing db host", func(c *Config) { c.Database.Host = "" }},
		{"zero statutory rate", func(c *Config) { c.Interest.StatutoryRatePercent = -1 }},
		{"offsets out of order", func(c *Config) { c.Protocol.FinalDemandAfterDays = 3 }},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"zero page count", func(c *Config) { c.Forms.PinnedPageCount = -1; c.Forms.PinnedPageCount = 0; c.Forms.PinnedPageWidthPt = 0 }},
		{"kafka enabled without brokers", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaulted()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
interest:
  base_rate_percent: 5.25
`), 0o600))

	t.Setenv("PAIDUP_DATABASE_HOST", "db.internal")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5.25, cfg.Interest.BaseRatePercent)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	// Untouched sections still get defaults.
	assert.Equal(t, 30, cfg.Protocol.ResponseWindowIndividual)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
