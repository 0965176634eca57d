package roadgen

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk settings file read by cmd/roadgen.
type Config struct {
	Log   LogConfig   `yaml:"log"`
	Store StoreConfig `yaml:"store"`
	Print PrintConfig `yaml:"print"`
}

type LogConfig struct {
	Verbosity int  `yaml:"verbosity"` // klog -v level; 2 enables DCEL dumps
	Color     bool `yaml:"color"`
}

type StoreConfig struct {
	Path     string `yaml:"path"` // omit for in-memory db
	ReadOnly bool   `yaml:"read_only"`
}

type PrintConfig struct {
	Positions bool `yaml:"positions"`
	HalfEdges bool `yaml:"half_edges"`
	Faces     bool `yaml:"faces"`
	Angles    bool `yaml:"angles"`
}

func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Verbosity: 2,
			Color:     true,
		},
		Print: PrintConfig{
			Positions: DefaultPrintOpts.Positions,
			HalfEdges: DefaultPrintOpts.HalfEdges,
			Faces:     DefaultPrintOpts.Faces,
		},
	}
}

// LoadConfig reads the YAML file at pathname on top of DefaultConfig().
// A missing file is not an error and yields the defaults.
func LoadConfig(pathname string) (Config, error) {
	cfg := DefaultConfig()
	if len(pathname) == 0 {
		return cfg, nil
	}

	buf, err := os.ReadFile(pathname)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrapf(ErrBadConfig, "reading %q: %v", pathname, err)
	}

	if err = yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, errors.Wrapf(ErrBadConfig, "parsing %q: %v", pathname, err)
	}
	if cfg.Log.Verbosity < 0 {
		return cfg, errors.Wrapf(ErrBadConfig, "log.verbosity must be >= 0 (got %d)", cfg.Log.Verbosity)
	}
	return cfg, nil
}

func (cfg *Config) PrintOpts() PrintOpts {
	return PrintOpts{
		Positions: cfg.Print.Positions,
		HalfEdges: cfg.Print.HalfEdges,
		Faces:     cfg.Print.Faces,
		Angles:    cfg.Print.Angles,
	}
}
