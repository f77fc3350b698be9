package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorageSQLite = "sqlite"
	StorageFile   = "file"

	PermissionGranted = "granted"
	PermissionDenied  = "denied"

	FileName = "pacer.yaml"
	EnvFile  = ".env"
)

type DetectorConfig struct {
	BufferSize      int           `yaml:"buffer_size"`
	StepThreshold   float64       `yaml:"step_threshold"`
	MinStepInterval time.Duration `yaml:"min_step_interval"`
}

type SessionConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	ResetDelay   time.Duration `yaml:"reset_delay"`
	Haptics      bool          `yaml:"haptics"`
}

type SensorConfig struct {
	Plugin            string        `yaml:"plugin"`
	PluginSHA256      string        `yaml:"plugin_sha256"`
	Permission        string        `yaml:"permission"`
	ReplayFile        string        `yaml:"replay_file"`
	Synthetic         bool          `yaml:"synthetic"`
	SyntheticInterval time.Duration `yaml:"synthetic_interval"`
	SyntheticSkip     float64       `yaml:"synthetic_skip"`
	PollInterval      time.Duration `yaml:"poll_interval"`
}

type Config struct {
	DataDir  string         `yaml:"-"`
	DBPath   string         `yaml:"db_path"`
	Storage  string         `yaml:"storage"`
	LogLevel string         `yaml:"log_level"`
	HTTPAddr string         `yaml:"http_addr"`
	Detector DetectorConfig `yaml:"detector"`
	Session  SessionConfig  `yaml:"session"`
	Sensor   SensorConfig   `yaml:"sensor"`
}

// New returns the defaults rooted at dataDir.
func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	return Config{
		DataDir:  dataDir,
		DBPath:   filepath.Join(dataDir, ".pacer", "pacer.db"),
		Storage:  StorageSQLite,
		LogLevel: "info",
		HTTPAddr: "127.0.0.1:8222",
		Detector: DetectorConfig{
			BufferSize:      4,
			StepThreshold:   1.2,
			MinStepInterval: 250 * time.Millisecond,
		},
		Session: SessionConfig{
			TickInterval: 100 * time.Millisecond,
			ResetDelay:   2 * time.Second,
			Haptics:      true,
		},
		Sensor: SensorConfig{
			Permission:        PermissionGranted,
			SyntheticInterval: 550 * time.Millisecond,
			SyntheticSkip:     0.1,
			PollInterval:      50 * time.Millisecond,
		},
	}, nil
}

// Load layers defaults, the YAML file, the .env file and the process environment.
// An empty configPath means <dataDir>/pacer.yaml, which may be absent.
func Load(dataDir, configPath string) (Config, error) {
	cfg, err := New(dataDir)
	if err != nil {
		return Config{}, err
	}
	explicit := configPath != ""
	if !explicit {
		configPath = filepath.Join(dataDir, FileName)
	}
	if err := cfg.readFile(configPath, explicit); err != nil {
		return Config{}, err
	}

	env, err := readEnv(filepath.Join(dataDir, EnvFile))
	if err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(env); err != nil {
		return Config{}, err
	}
	if !filepath.IsAbs(cfg.DBPath) {
		cfg.DBPath = filepath.Join(dataDir, cfg.DBPath)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string, required bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

// readEnv merges the optional .env file under the process environment.
func readEnv(path string) (map[string]string, error) {
	values := map[string]string{}
	fileValues, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read env file: %w", err)
	}
	for k, v := range fileValues {
		values[k] = v
	}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, "PACER_") {
			values[k] = v
		}
	}
	return values, nil
}

func (c *Config) applyEnv(env map[string]string) error {
	setString := func(key string, dst *string) {
		if v, ok := env[key]; ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	setString("PACER_STORAGE", &c.Storage)
	setString("PACER_DB_PATH", &c.DBPath)
	setString("PACER_LOG_LEVEL", &c.LogLevel)
	setString("PACER_HTTP_ADDR", &c.HTTPAddr)
	setString("PACER_SENSOR_PLUGIN", &c.Sensor.Plugin)
	setString("PACER_REPLAY_FILE", &c.Sensor.ReplayFile)
	setString("PACER_MOTION_PERMISSION", &c.Sensor.Permission)

	if v, ok := env["PACER_BUFFER_SIZE"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PACER_BUFFER_SIZE: %w", err)
		}
		c.Detector.BufferSize = n
	}
	if v, ok := env["PACER_STEP_THRESHOLD"]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("PACER_STEP_THRESHOLD: %w", err)
		}
		c.Detector.StepThreshold = f
	}
	if v, ok := env["PACER_MIN_STEP_INTERVAL"]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PACER_MIN_STEP_INTERVAL: %w", err)
		}
		c.Detector.MinStepInterval = d
	}
	if v, ok := env["PACER_HAPTICS"]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PACER_HAPTICS: %w", err)
		}
		c.Session.Haptics = b
	}
	if v, ok := env["PACER_SYNTHETIC"]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PACER_SYNTHETIC: %w", err)
		}
		c.Sensor.Synthetic = b
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Storage {
	case StorageSQLite, StorageFile:
	default:
		return fmt.Errorf("unsupported storage %q", c.Storage)
	}
	if c.Detector.BufferSize < 1 {
		return fmt.Errorf("detector buffer size must be at least 1")
	}
	if c.Detector.StepThreshold <= 0 {
		return fmt.Errorf("step threshold must be positive")
	}
	if c.Detector.MinStepInterval < 0 {
		return fmt.Errorf("min step interval must not be negative")
	}
	if c.Session.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive")
	}
	if c.Session.ResetDelay < 0 {
		return fmt.Errorf("reset delay must not be negative")
	}
	switch c.Sensor.Permission {
	case PermissionGranted, PermissionDenied:
	default:
		return fmt.Errorf("unsupported motion permission %q", c.Sensor.Permission)
	}
	if c.Sensor.SyntheticInterval <= 0 {
		return fmt.Errorf("synthetic interval must be positive")
	}
	if c.Sensor.SyntheticSkip < 0 || c.Sensor.SyntheticSkip >= 1 {
		return fmt.Errorf("synthetic skip must be in [0, 1)")
	}
	if c.Sensor.PollInterval <= 0 {
		return fmt.Errorf("sensor poll interval must be positive")
	}
	return nil
}
