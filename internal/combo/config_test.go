package combo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	require.NoError(t, Defaults().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"ceiling too low", func(c *Config) { c.PriceCeilingRatio = 0.5 }, "price_ceiling_ratio"},
		{"ceiling too high", func(c *Config) { c.PriceCeilingRatio = 0.8 }, "price_ceiling_ratio"},
		{"superset smaller than sample", func(c *Config) { c.SupersetSize = 5 }, "superset_size"},
		{"no seeds", func(c *Config) { c.MaxSeeds = 0 }, "max_seeds"},
		{"unbounded seeds", func(c *Config) { c.MaxSeeds = 1_000_000 }, "max_seeds"},
		{"result limit above accepted", func(c *Config) { c.ResultLimit = 31 }, "result_limit"},
		{"cap below minimum", func(c *Config) { c.MaxMembers = 1 }, "max_members"},
		{"empty group", func(c *Config) { c.RedundancyGroups = []RedundancyGroup{{Name: "x"}} }, "redundancy_groups"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			var invalid ErrInvalidConfig
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := Defaults()
	cfg.SampleSize = 0
	_, err := NewEngine(cfg)
	assert.Error(t, err)
}

func TestConfigGroups(t *testing.T) {
	cfg := Defaults()
	assert.Len(t, cfg.Groups(), 3)

	cfg.RedundancyGroups = []RedundancyGroup{{Name: "ramen", Tags: []string{"라면"}}}
	assert.Equal(t, "ramen", cfg.Groups()[0].Name)
}
