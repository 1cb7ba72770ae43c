// config loads the knight's spiral, board, animation and server settings from yaml.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Kind is the only config kind this app understands.
const Kind = "trappedKnight"

// OuterConfig is the envelope of every config file: a kind and its definition.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// Config holds all app settings.
// Keys are lowercase or snake_case, since viper lowercases everything it reads.
type Config struct {
	Spiral    SpiralConfig    `yaml:"spiral"`
	Board     BoardConfig     `yaml:"board"`
	Animation AnimationConfig `yaml:"animation"`
	Server    ServerConfig    `yaml:"server"`
}

type SpiralConfig struct {
	// Size is the number of spiral cells to generate.
	Size int `yaml:"size"`
}

// BoardConfig describes the svg board in pixels.
type BoardConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// Scale is pixels per grid unit.
	Scale int `yaml:"scale"`
	// Margin is the number of extra squares drawn around the knight's furthest extent.
	Margin int `yaml:"margin"`
	// MaxRadius caps the drawn board so a wandering knight doesn't yield a huge grid.
	MaxRadius int `yaml:"max_radius"`
}

type AnimationConfig struct {
	// Speed is the initial number of moves per frame.
	Speed    int           `yaml:"speed"`
	MaxSpeed int           `yaml:"max_speed"`
	Interval time.Duration `yaml:"interval"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the listen address.
func (sc ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", sc.Host, sc.Port)
}

var defaults = map[string]interface{}{
	"kind":                    Kind,
	"def.spiral.size":         3000,
	"def.board.width":         900,
	"def.board.height":        900,
	"def.board.scale":         6,
	"def.board.margin":        2,
	"def.board.max_radius":    75,
	"def.animation.speed":     1,
	"def.animation.max_speed": 50,
	"def.animation.interval":  "16ms",
	"def.server.host":         "",
	"def.server.port":         8080,
}

// Config validation errors.
var (
	ErrUnknownKind     = errors.New("unknown config kind")
	ErrInvalidSize     = errors.New("spiral size must be positive")
	ErrInvalidBoard    = errors.New("board width, height and scale must be positive, margin and max radius non-negative")
	ErrInvalidSpeed    = errors.New("animation speed must be within [1, max_speed]")
	ErrInvalidInterval = errors.New("animation interval must be positive")
	ErrInvalidPort     = errors.New("server port must be within [1, 65535]")
)

// FromYaml reads the config at path, filling unset values with defaults.
// An empty path yields the defaults.
func FromYaml(path string) (*Config, error) {
	vp := viper.New()
	for key, val := range defaults {
		vp.SetDefault(key, val)
	}

	var err error
	if path != "" {
		vp.SetConfigFile(path)
		vp.SetConfigType("yaml")
		if err = vp.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	outerConfig := &OuterConfig{}
	if err = vp.Unmarshal(outerConfig); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if outerConfig.Kind != Kind {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, outerConfig.Kind)
	}

	// Viper's decoding doesn't know yaml tags or durations, so the definition makes
	// a round trip through yaml.
	var raw []byte
	if raw, err = yaml.Marshal(outerConfig.Def); err != nil {
		return nil, err
	}

	innerConfig := &Config{}
	if err = yaml.Unmarshal(raw, innerConfig); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return innerConfig, nil
}

// Default returns the built-in config.
func Default() *Config {
	cfg, err := FromYaml("")
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks that the config is usable, returning one of the sentinel errors above.
func (cfg *Config) Validate() error {
	if cfg.Spiral.Size < 1 {
		return ErrInvalidSize
	}

	b := cfg.Board
	if b.Width < 1 || b.Height < 1 || b.Scale < 1 || b.Margin < 0 || b.MaxRadius < 0 {
		return ErrInvalidBoard
	}

	a := cfg.Animation
	if a.MaxSpeed < 1 || a.Speed < 1 || a.Speed > a.MaxSpeed {
		return ErrInvalidSpeed
	}
	if a.Interval <= 0 {
		return ErrInvalidInterval
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return ErrInvalidPort
	}
	return nil
}
