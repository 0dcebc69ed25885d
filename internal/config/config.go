// Package config holds the static simulation configuration supplied at
// startup. Files are validated against an embedded JSON schema before
// unmarshaling.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON string

// Config is the full set of tunables the simulation core consumes.
// Durations are sim-seconds; rates are per sim-second.
type Config struct {
	// Comb geometry.
	Columns int     `json:"columns"`
	Rows    int     `json:"rows"`
	HexSize float64 `json:"hexSize"` // Rendering hint, carried for collaborators

	// Entrance placement.
	EntranceSide  string `json:"entranceSide"` // top | bottom | left | right
	EntranceCount int    `json:"entranceCount"`

	// Starting population.
	InitialWorkers int `json:"initialWorkers"`

	// Lifespans and brood development.
	WorkerLifespan float64 `json:"workerLifespan"`
	QueenLifespan  float64 `json:"queenLifespan"`
	EggDuration    float64 `json:"eggDuration"`
	LarvaDuration  float64 `json:"larvaDuration"`
	PupaDuration   float64 `json:"pupaDuration"`

	// Movement and aging.
	MovementSpeed float64 `json:"movementSpeed"` // Cells per second
	AgingRate     float64 `json:"agingRate"`     // <1 slows aging down

	// Crowding and routing.
	MaxBeesPerCell     int  `json:"maxBeesPerCell"`
	PathfindingEnabled bool `json:"pathfindingEnabled"`
	PathCacheSize      int  `json:"pathCacheSize"`

	// Storage zoning.
	SeparateBroodAndHoney bool    `json:"separateBroodAndHoney"`
	StorageFullRatio      float64 `json:"storageFullRatio"`

	// Hazards and climate.
	ForagerDeathChance float64 `json:"foragerDeathChance"`
	OptimalTemperature float64 `json:"optimalTemperature"` // Celsius

	// Seasonal activity multipliers: spring, summer, autumn, winter.
	SeasonActivity [4]float64 `json:"seasonActivity"`

	// Deterministic runs replay exactly from the same seed. 0 = random.
	Seed uint64 `json:"seed"`
}

// DefaultConfig returns the standard colony tuning.
func DefaultConfig() *Config {
	return &Config{
		Columns:               30,
		Rows:                  20,
		HexSize:               20,
		EntranceSide:          "bottom",
		EntranceCount:         3,
		InitialWorkers:        40,
		WorkerLifespan:        7200,
		QueenLifespan:         28800,
		EggDuration:           120,
		LarvaDuration:         300,
		PupaDuration:          420,
		MovementSpeed:         2.0,
		AgingRate:             1.0,
		MaxBeesPerCell:        9,
		PathfindingEnabled:    true,
		PathCacheSize:         128,
		SeparateBroodAndHoney: true,
		StorageFullRatio:      0.35,
		ForagerDeathChance:    0.001,
		OptimalTemperature:    35,
		SeasonActivity:        [4]float64{0.8, 1.0, 0.7, 0.4},
		Seed:                  0,
	}
}

// Load reads a JSON config file, validates it against the embedded
// schema, and unmarshals it over the defaults so partial files work.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	sch, err := jsonschema.CompileString("config.schema.json", schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Check enforces cross-field constraints the schema cannot express.
func (c *Config) Check() error {
	if c.Columns < 4 || c.Rows < 4 {
		return fmt.Errorf("grid too small: %dx%d (minimum 4x4)", c.Columns, c.Rows)
	}
	if c.EntranceCount < 1 {
		return fmt.Errorf("entranceCount must be at least 1, got %d", c.EntranceCount)
	}
	switch c.EntranceSide {
	case "top", "bottom", "left", "right":
	default:
		return fmt.Errorf("invalid entranceSide %q", c.EntranceSide)
	}
	if c.MaxBeesPerCell < 1 {
		return fmt.Errorf("maxBeesPerCell must be positive, got %d", c.MaxBeesPerCell)
	}
	if c.StorageFullRatio <= 0 || c.StorageFullRatio > 1 {
		return fmt.Errorf("storageFullRatio must be in (0,1], got %g", c.StorageFullRatio)
	}
	return nil
}
