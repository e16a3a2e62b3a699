package spec

import (
	"maps"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/metricflow/pkg/canvas"
	"github.com/matzehuels/metricflow/pkg/errors"
)

// DefaultConfigFile is the config file looked up in the working directory.
const DefaultConfigFile = "metricflow.toml"

// Config is the contents of metricflow.toml.
type Config struct {
	Canvas map[string]any `toml:"canvas"`
	Server ServerConfig   `toml:"server"`
}

// ServerConfig configures the live server.
type ServerConfig struct {
	Addr   string `toml:"addr"`
	Width  string `toml:"width"`
	Height string `toml:"height"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080", Width: "800px", Height: "600px"},
	}
}

// LoadConfig reads a config file over the defaults. A missing file is an
// error unless optional is set, in which case the defaults are returned.
func LoadConfig(path string, optional bool) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if optional {
				return cfg, nil
			}
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	return cfg, nil
}

// Options merges option maps left to right over the config's [canvas] table
// and decodes the result. Later maps win.
func (c Config) Options(overrides ...map[string]any) (canvas.Options, error) {
	merged := make(map[string]any, len(c.Canvas))
	maps.Copy(merged, c.Canvas)
	for _, o := range overrides {
		maps.Copy(merged, o)
	}
	return canvas.DecodeOptions(merged)
}
