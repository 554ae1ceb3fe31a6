// Package config loads the service configuration from configs/config.yml,
// an optional .env file and FILLING_LINE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "FILLING_LINE"

type Config struct {
	Port       string           `mapstructure:"port"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Events     EventsConfig     `mapstructure:"events"`
	Machine    MachineConfig    `mapstructure:"machine"`
	Influx     InfluxConfig     `mapstructure:"influx"`
	CORS       CORSConfig       `mapstructure:"cors"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type SimulationConfig struct {
	Tick           time.Duration `mapstructure:"tick"`
	Seed           int64         `mapstructure:"seed"`
	TankFloor      float64       `mapstructure:"tank_floor"`
	BottlesPerTick int           `mapstructure:"bottles_per_tick"`
	ShelfLifeDays  int           `mapstructure:"shelf_life_days"`
	RestoreState   bool          `mapstructure:"restore_state"`
}

type EventsConfig struct {
	// Retention is the number of newest events kept; 0 keeps everything.
	Retention int `mapstructure:"retention"`
}

// MachineConfig overrides the identity of the simulated machine. Empty
// fields keep the built-in identity.
type MachineConfig struct {
	Name              string `mapstructure:"name"`
	SerialNumber      string `mapstructure:"serial_number"`
	Plant             string `mapstructure:"plant"`
	ProductionSegment string `mapstructure:"production_segment"`
	ProductionLine    string `mapstructure:"production_line"`
}

type InfluxConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	URL         string        `mapstructure:"url"`
	Token       string        `mapstructure:"token"`
	Org         string        `mapstructure:"org"`
	Bucket      string        `mapstructure:"bucket"`
	Measurement string        `mapstructure:"measurement"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

var (
	ErrInvalidTick      = errors.New("simulation.tick must be positive")
	ErrInvalidRetention = errors.New("events.retention must not be negative")
	ErrInfluxIncomplete = errors.New("influx is enabled but url, org or bucket is missing")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("db.path", "filling_line.db")

	v.SetDefault("simulation.tick", "2s")
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.tank_floor", 10.0)
	v.SetDefault("simulation.bottles_per_tick", 1)
	v.SetDefault("simulation.shelf_life_days", 365)
	v.SetDefault("simulation.restore_state", true)

	v.SetDefault("events.retention", 5000)

	v.SetDefault("machine.name", "")
	v.SetDefault("machine.serial_number", "")
	v.SetDefault("machine.plant", "")
	v.SetDefault("machine.production_segment", "")
	v.SetDefault("machine.production_line", "")

	v.SetDefault("influx.enabled", false)
	v.SetDefault("influx.url", "http://localhost:8086")
	v.SetDefault("influx.token", "")
	v.SetDefault("influx.org", "")
	v.SetDefault("influx.bucket", "")
	v.SetDefault("influx.measurement", "filling_line")
	v.SetDefault("influx.timeout", "5s")

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// Load reads config.yml from dir. A missing file is not an error; defaults
// and environment variables still apply.
func Load(dir string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Simulation.Tick <= 0 {
		return ErrInvalidTick
	}
	if c.Events.Retention < 0 {
		return ErrInvalidRetention
	}
	if c.Influx.Enabled && (c.Influx.URL == "" || c.Influx.Org == "" || c.Influx.Bucket == "") {
		return ErrInfluxIncomplete
	}
	return nil
}
