package engine

import (
	"github.com/louisbranch/kobold-keeper/internal/dice/notation"
	"github.com/louisbranch/kobold-keeper/internal/platform/config"
)

// Config bounds the expressions an Engine accepts. Values are read from
// KOBOLD_KEEPER_MAX_TOTAL_DICE, KOBOLD_KEEPER_MAX_SIDES and
// KOBOLD_KEEPER_MAX_DEPTH.
type Config struct {
	MaxTotalDice int `env:"MAX_TOTAL_DICE" envDefault:"1000"`
	MaxSides     int `env:"MAX_SIDES" envDefault:"1000"`
	MaxDepth     int `env:"MAX_DEPTH" envDefault:"64"`
}

// ParseConfig loads Config from the environment.
func ParseConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Limits converts cfg to parser limits. Non-positive values fall back to
// the notation defaults.
func (c Config) Limits() notation.Limits {
	return notation.Limits{
		MaxTotalDice: c.MaxTotalDice,
		MaxSides:     c.MaxSides,
		MaxDepth:     c.MaxDepth,
	}.Normalize()
}
