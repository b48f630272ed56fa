package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/zeusync/posekit/internal/core/loader"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	LogLevel string `yaml:"log_level"`
	Clips    Clips  `yaml:"clips"`
	Server   Server `yaml:"server"`
}

type Clips struct {
	Root   string `yaml:"root"`
	Prefix string `yaml:"namespace_dir_prefix"`
	// Extensions lists clip file suffixes including the dot.
	Extensions []string      `yaml:"extensions"`
	Workers    int           `yaml:"workers"`
	Watch      bool          `yaml:"watch"`
	Debounce   time.Duration `yaml:"debounce"`
}

type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

func Default() Config {
	return Config{
		LogLevel: "info",
		Clips: Clips{
			Root:       "assets",
			Prefix:     loader.DefaultPrefix,
			Extensions: append([]string(nil), loader.DefaultExtensions...),
			Workers:    4,
			Watch:      true,
			Debounce:   150 * time.Millisecond,
		},
		Server: Server{
			Host: "0.0.0.0",
			Port: 8080,
			Path: "/animations",
		},
	}
}

// Load reads path on top of Default. Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Clips.Root == "":
		return fmt.Errorf("%w: clips.root is empty", ErrInvalid)
	case c.Clips.Workers <= 0:
		return fmt.Errorf("%w: clips.workers must be positive, got %d", ErrInvalid, c.Clips.Workers)
	case c.Clips.Debounce < 0:
		return fmt.Errorf("%w: clips.debounce is negative", ErrInvalid)
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("%w: server.port out of range: %d", ErrInvalid, c.Server.Port)
	case c.Server.Path == "" || c.Server.Path[0] != '/':
		return fmt.Errorf("%w: server.path must start with /", ErrInvalid)
	}
	return nil
}

// Addr is the listen address for the hub.
func (s Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
