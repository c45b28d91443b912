package hrtf

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Configuration keys the registry consults.
const (
	// ConfigKeyPaths is a comma-separated list of directories to search for
	// data files. A trailing comma keeps the default locations in the scan.
	ConfigKeyPaths = "hrtf-paths"

	// ConfigKeyDefault names the data set to place first in enumeration.
	ConfigKeyDefault = "default-hrtf"

	// ConfigKeySize caps the impulse-response length of loaded tables.
	ConfigKeySize = "hrtf-size"
)

// Config supplies device-scoped key/value settings to the registry. Lookups
// return the value and whether the key was set; an unset key falls back to
// built-in behavior. Implementations must be safe for concurrent reads.
type Config interface {
	// String returns the setting for the key, preferring a device-specific
	// value over a global one.
	String(device, key string) (string, bool)

	// Uint returns the setting parsed as an unsigned integer.
	Uint(device, key string) (uint, bool)
}

// FileConfig is a YAML-backed Config with a global section and per-device
// overrides:
//
//	global:
//	  hrtf-paths: "/usr/share/openal/hrtf"
//	devices:
//	  "Headphones":
//	    default-hrtf: "Built-In HRTF"
type FileConfig struct {
	Global  map[string]string            `yaml:"global"`
	Devices map[string]map[string]string `yaml:"devices"`
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hrtf: reading config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration data.
func ParseConfig(data []byte) (*FileConfig, error) {
	cfg := &FileConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("hrtf: parsing config: %w", err)
	}
	return cfg, nil
}

// String implements Config.
func (c *FileConfig) String(device, key string) (string, bool) {
	if device != "" {
		if dev, ok := c.Devices[device]; ok {
			if v, ok := dev[key]; ok {
				return v, true
			}
		}
	}
	v, ok := c.Global[key]
	return v, ok
}

// Uint implements Config.
func (c *FileConfig) Uint(device, key string) (uint, bool) {
	s, ok := c.String(device, key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}
