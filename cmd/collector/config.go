package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/LemonScout/lemonscout-mvp/engine/domain"
	"github.com/LemonScout/lemonscout-mvp/engine/graph"
)

// Duration decodes "30m"-style YAML values.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: bad duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the YAML collection plan: which makes and model years to fetch,
// how fast, and any per-vehicle attribute overrides.
type Config struct {
	NATSURL          string       `yaml:"nats_url"`
	Interval         Duration     `yaml:"interval"`
	Makes            []string     `yaml:"makes"`
	Years            []int        `yaml:"years"`
	MaxModelsPerMake int          `yaml:"max_models_per_make"`
	RateLimitRPS     float64      `yaml:"rate_limit_rps"`
	EIAAPIKey        string       `yaml:"eia_api_key"`
	Attrs            []AttrsEntry `yaml:"attrs"`
}

// AttrsEntry supplies known attributes for one vehicle; everything is
// optional and the engine defaults what is missing.
type AttrsEntry struct {
	Make        string  `yaml:"make"`
	Model       string  `yaml:"model"`
	Year        int     `yaml:"year"`
	CombinedMPG float64 `yaml:"combined_mpg"`
	FuelType    string  `yaml:"fuel_type"`
	Class       string  `yaml:"class"`
	Trim        string  `yaml:"trim"`
	MSRP        int     `yaml:"msrp"`
	SalesVolume int     `yaml:"sales_volume"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if len(cfg.Makes) == 0 {
		return Config{}, fmt.Errorf("config: at least one make is required")
	}
	if len(cfg.Years) == 0 {
		return Config{}, fmt.Errorf("config: at least one year is required")
	}
	for _, y := range cfg.Years {
		if y < domain.MinModelYear || y > domain.MaxModelYear {
			return Config{}, fmt.Errorf("config: year %d out of range [%d, %d]",
				y, domain.MinModelYear, domain.MaxModelYear)
		}
	}

	if cfg.NATSURL == "" {
		cfg.NATSURL = "nats://localhost:4222"
	}
	if cfg.MaxModelsPerMake <= 0 {
		cfg.MaxModelsPerMake = 5
	}
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 2
	}
	return cfg, nil
}

// attrsIndex keys the override entries by vehicle so the collect loop can
// look them up per model discovered.
func attrsIndex(entries []AttrsEntry) map[string]AttrsEntry {
	idx := make(map[string]AttrsEntry, len(entries))
	for _, e := range entries {
		v := domain.Vehicle{Make: e.Make, Model: e.Model, Year: e.Year}
		idx[graph.VehicleKey(v)] = e
	}
	return idx
}

// attrsFor builds the VehicleAttrs for a vehicle from its override entry, or
// a zero-value set the engine will default.
func attrsFor(idx map[string]AttrsEntry, v domain.Vehicle) (domain.VehicleAttrs, int) {
	e, ok := idx[graph.VehicleKey(v)]
	if !ok {
		return domain.VehicleAttrs{Vehicle: v}, 0
	}
	return domain.VehicleAttrs{
		Vehicle:     v,
		CombinedMPG: e.CombinedMPG,
		FuelType:    domain.FuelType(e.FuelType),
		Class:       e.Class,
		Trim:        e.Trim,
		MSRP:        e.MSRP,
	}, e.SalesVolume
}
