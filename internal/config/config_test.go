package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_HCL(t *testing.T) {
	src := `
asset_root = "assets"
catalog    = "anims.db"
tick_rate  = 30
preload    = ["player.entity_animations.json"]
`
	cfg, err := Parse("nextanim.hcl", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, "assets", cfg.AssetRoot)
	assert.Equal(t, "anims.db", cfg.Catalog)
	assert.Equal(t, 30, cfg.TickRate)
	assert.Equal(t, []string{"player.entity_animations.json"}, cfg.Preload)
	assert.Equal(t, "nextanim: ", cfg.LogPrefix, "unset fields keep defaults")
	assert.InDelta(t, 1.0/30, cfg.TickDelta(), 1e-6)
}

func TestParse_JSON(t *testing.T) {
	cfg, err := Parse("nextanim.json", []byte(`{"tick_rate": 120}`))
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.TickRate)
	assert.Equal(t, ".", cfg.AssetRoot)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"zero tick rate", `tick_rate = 0`},
		{"negative tick rate", `tick_rate = -5`},
		{"unknown attribute", `frame_rate = 60`},
		{"bad syntax", `tick_rate = `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("nextanim.hcl", []byte(tt.src))
			assert.Error(t, err)
		})
	}

	_, err := Parse("nextanim.hcl", []byte(`tick_rate = 0`))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nextanim.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`log_prefix = "anim: "`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "anim: ", cfg.LogPrefix)
	assert.Equal(t, 60, cfg.TickRate)

	_, err = Load(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
