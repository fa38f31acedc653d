// Package config loads the runtime settings for the nextanim CLI.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

var ErrInvalid = errors.New("invalid config")

// Config controls where assets come from and how playback is clocked.
type Config struct {
	AssetRoot string   `hcl:"asset_root,optional"` // directory assets are resolved against (default: ".")
	Catalog   string   `hcl:"catalog,optional"`    // SQLite catalog; when set, assets are read from it instead of AssetRoot
	TickRate  int      `hcl:"tick_rate,optional"`  // ticks per second for `play` (default: 60)
	LogPrefix string   `hcl:"log_prefix,optional"`
	Preload   []string `hcl:"preload,optional"` // asset paths loaded at startup
}

// Default returns sensible defaults.
func Default() Config {
	return Config{
		AssetRoot: ".",
		TickRate:  60,
		LogPrefix: "nextanim: ",
	}
}

// Load decodes the HCL (or HCL-flavoured JSON) file at path over Default.
func Load(path string) (Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(path, src)
}

// Parse decodes src; filename picks the syntax (".hcl" or ".json").
func Parse(filename string, src []byte) (Config, error) {
	cfg := Default()
	if err := hclsimple.Decode(filename, src, nil, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", filename, err)
	}
	if cfg.AssetRoot == "" {
		cfg.AssetRoot = "."
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("%w: tick_rate must be positive, got %d", ErrInvalid, c.TickRate)
	}
	return nil
}

// TickDelta is the clock step for one tick, in seconds.
func (c Config) TickDelta() float32 {
	return 1 / float32(c.TickRate)
}
