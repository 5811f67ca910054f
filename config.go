package main

import (
	"os"

	"github.com/BurntSushi/toml"
)

// OptimizeLevel selects which optimizer passes run, mapped from the
// -O0/-OD flag family or the config file's [optimize].level.
type OptimizeLevel string

const (
	OptimizeOff     OptimizeLevel = "off"
	OptimizeDefault OptimizeLevel = "default"
	OptimizeDeep    OptimizeLevel = "deep"
)

// Config is the shape of the optional .lc1c.toml defaults file. Command-
// line flags always override whatever a config file supplies.
type Config struct {
	Optimize struct {
		Level string `toml:"level"`
	} `toml:"optimize"`
	Output struct {
		Unix2Dos bool `toml:"unix2dos"`
		Verbose  bool `toml:"verbose"`
	} `toml:"output"`
}

func DefaultConfig() Config {
	var c Config
	c.Optimize.Level = string(OptimizeDefault)
	return c
}

// LoadConfig reads path if it exists. A missing file yields defaults, not
// an error — this mirrors the reference emulator's own config convention,
// cut down to the two sections a one-shot assembler needs.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, err
	}
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}
