package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port            string `yaml:"port"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level    string `yaml:"level"`
		Encoding string `yaml:"encoding"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Catalog struct {
		BaseURL  string `yaml:"base_url"`
		Language string `yaml:"language"`
		TTL      string `yaml:"ttl"`
		Timeout  string `yaml:"timeout"`
	} `yaml:"catalog"`
	Map struct {
		Path                   string  `yaml:"path"`
		ZoomFactor             float64 `yaml:"zoom_factor"`
		MaxZoom                float64 `yaml:"max_zoom"`
		Animation              string  `yaml:"animation"`
		PanThreshold           float64 `yaml:"pan_threshold"`
		PinchSensitivity       float64 `yaml:"pinch_sensitivity"`
		ClampPan               *bool   `yaml:"clamp_pan"`
		WheelRequiresSecondary bool    `yaml:"wheel_requires_secondary"`
	} `yaml:"map"`
	Quiz struct {
		Questions int    `yaml:"questions"`
		Options   int    `yaml:"options"`
		FrameRate int    `yaml:"frame_rate"`
		Seed      *int64 `yaml:"seed"`
	} `yaml:"quiz"`
	// Aliases lists extra accepted spellings keyed by lowercase cca2 for
	// names and "capital:<cca2>" for capitals.
	Aliases map[string][]string `yaml:"aliases"`
}

// Load reads .env files and the YAML config at path, then applies environment
// overrides. A missing YAML file is not an error; defaults fill the gaps.
func Load(path string) (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("POSTGRES_URL"); v != "" {
		c.Postgres.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("MAP_PATH"); v != "" {
		c.Map.Path = v
	}
	if v := os.Getenv("CATALOG_LANGUAGE"); v != "" {
		c.Catalog.Language = v
	}
	if v := os.Getenv("QUIZ_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Quiz.Seed = &n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Encoding == "" {
		c.Log.Encoding = "json"
	}
	if c.Map.Path == "" {
		c.Map.Path = "assets/world.svg"
	}
	if c.Map.ClampPan == nil {
		clamp := true
		c.Map.ClampPan = &clamp
	}
	if c.Quiz.Questions <= 0 {
		c.Quiz.Questions = 10
	}
	if c.Quiz.Options <= 1 {
		c.Quiz.Options = 4
	}
	if c.Quiz.FrameRate <= 0 {
		c.Quiz.FrameRate = 60
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
