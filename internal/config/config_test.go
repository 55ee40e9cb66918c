package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, 4, cfg.Processor.Workers)
	assert.Equal(t, "lvr_presale*.csv", cfg.Processor.TransactionGlob)
	assert.True(t, cfg.Scraper.Headless)
	assert.NotEmpty(t, cfg.Security.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "default config is valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "zero port rejected",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "out of range port rejected",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "zero read timeout rejected",
			mutate:  func(c *Config) { c.Server.ReadTimeout = 0 },
			wantErr: "read timeout",
		},
		{
			name:    "no origins rejected",
			mutate:  func(c *Config) { c.Security.AllowedOrigins = nil },
			wantErr: "allowed origin",
		},
		{
			name:    "zero workers rejected",
			mutate:  func(c *Config) { c.Processor.Workers = 0 },
			wantErr: "workers",
		},
		{
			name:    "malformed target season rejected",
			mutate:  func(c *Config) { c.Processor.TargetSeason = "2023Q2" },
			wantErr: "target season",
		},
		{
			name:    "season five rejected",
			mutate:  func(c *Config) { c.Processor.TargetSeason = "113Y5S" },
			wantErr: "target season",
		},
		{
			name:   "well-formed target season accepted",
			mutate: func(c *Config) { c.Processor.TargetSeason = "113Y2S" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "console"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())

	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestMergeConfigsEnvWins(t *testing.T) {
	fileCfg := Config{}
	fileCfg.Server.Port = 9090
	fileCfg.Processor.Workers = 8
	fileCfg.Processor.TargetSeason = "112Y4S"

	envCfg := Config{}
	envCfg.Server.Port = 8081

	merged := mergeConfigs(fileCfg, envCfg)

	// Env value kept, file values fill the gaps.
	assert.Equal(t, 8081, merged.Server.Port)
	assert.Equal(t, 8, merged.Processor.Workers)
	assert.Equal(t, "112Y4S", merged.Processor.TargetSeason)
}
