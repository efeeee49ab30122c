// Package config loads application configuration from environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything tunable about a game session and its
// backing services.
type Config struct {
	// Game rules.
	HumanName          string        `env:"PLAYER_NAME" envDefault:"Player"`
	AICount            int           `env:"AI_COUNT" envDefault:"3"`
	Difficulty         string        `env:"DIFFICULTY" envDefault:"medium"`
	TurnsPerPlayer     int           `env:"TURNS_PER_PLAYER" envDefault:"10"`
	RegionCount        int           `env:"REGION_COUNT" envDefault:"24"`
	DefenseBonus       int           `env:"DEFENSE_BONUS" envDefault:"300"`
	SpecialRoundChance float64       `env:"SPECIAL_ROUND_CHANCE" envDefault:"0.15"`
	MinCapitalDistance int           `env:"MIN_CAPITAL_DISTANCE" envDefault:"2"`
	SelectionTimeout   time.Duration `env:"SELECTION_TIMEOUT" envDefault:"60s"`
	AnswerTimeout      time.Duration `env:"ANSWER_TIMEOUT" envDefault:"30s"`
	Categories         []string      `env:"CATEGORIES" envSeparator:","`
	MapFile            string        `env:"MAP_FILE"`
	QuestionFile       string        `env:"QUESTION_FILE"`

	// Backing services. Empty URLs disable the corresponding feature.
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	// Presentation gateway.
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	ServeWS    bool   `env:"SERVE_WS" envDefault:"false"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.TurnsPerPlayer < 5 || c.TurnsPerPlayer > 20 {
		return fmt.Errorf("TURNS_PER_PLAYER %d out of range 5..20", c.TurnsPerPlayer)
	}
	if c.RegionCount < 16 || c.RegionCount > 32 {
		return fmt.Errorf("REGION_COUNT %d out of range 16..32", c.RegionCount)
	}
	if c.AICount < 1 || c.AICount > 7 {
		return fmt.Errorf("AI_COUNT %d out of range 1..7", c.AICount)
	}
	if c.SpecialRoundChance < 0 || c.SpecialRoundChance > 1 {
		return fmt.Errorf("SPECIAL_ROUND_CHANCE %v out of range 0..1", c.SpecialRoundChance)
	}
	return nil
}
