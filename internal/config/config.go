// Package config loads application configuration from a YAML file, a .env
// file and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/physioduel/internal/game"
)

// Environment variables that override the file configuration.
const (
	EnvAddr      = "PHYSIODUEL_ADDR"
	EnvDB        = "PHYSIODUEL_DB"
	EnvStaticDir = "PHYSIODUEL_STATIC_DIR"
	EnvPoseCmd   = "PHYSIODUEL_POSE_CMD"
	EnvHooksDir  = "PHYSIODUEL_HOOKS_DIR"
)

// ErrInvalidConfiguration is the same sentinel the game returns, so callers
// can test for it regardless of where validation failed.
var ErrInvalidConfiguration = game.ErrInvalidConfiguration

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// StoreConfig configures the session history database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// PoseConfig configures the external pose estimation service. An empty
// command means frames only arrive over the frame socket.
type PoseConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// HooksConfig configures event hooks. An empty directory disables them.
type HooksConfig struct {
	Dir     string        `yaml:"dir"`
	Timeout time.Duration `yaml:"timeout"`
}

// Config is the complete application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Pose   PoseConfig   `yaml:"pose"`
	Hooks  HooksConfig  `yaml:"hooks"`
	Game   game.Config  `yaml:"game"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Store:  StoreConfig{Path: defaultDBPath()},
		Hooks:  HooksConfig{Timeout: 5 * time.Second},
		Game:   game.DefaultConfig(),
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "physioduel.db"
	}
	return filepath.Join(home, ".physioduel", "physioduel.db")
}

// Load reads the YAML file at path on top of the defaults, then applies
// .env files (".env" when none are given; missing files are ignored) and
// environment overrides. An empty path skips the file.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := loadEnvFiles(envFiles...); err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv(EnvDB); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv(EnvStaticDir); v != "" {
		cfg.Server.StaticDir = v
	}
	if fields := strings.Fields(os.Getenv(EnvPoseCmd)); len(fields) > 0 {
		cfg.Pose.Command = fields[0]
		cfg.Pose.Args = fields[1:]
	}
	if v := os.Getenv(EnvHooksDir); v != "" {
		cfg.Hooks.Dir = v
	}
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server address is empty", ErrInvalidConfiguration)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("%w: store path is empty", ErrInvalidConfiguration)
	}
	if c.Hooks.Dir != "" && c.Hooks.Timeout <= 0 {
		return fmt.Errorf("%w: hook timeout must be positive", ErrInvalidConfiguration)
	}
	return c.Game.Validate()
}
