package am

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/teranos/almanac/errors"
)

// EnvPrefix prefixes every environment variable almanac reads.
const EnvPrefix = "ALMANAC"

// Project config file name, searched for from the working directory upward.
const ProjectConfigName = "am.toml"

var (
	mu            sync.Mutex
	globalConfig  *Config
	viperInstance *viper.Viper
)

// Load reads the almanac configuration using Viper
func Load() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalConfig != nil {
		return globalConfig, nil
	}

	config, err := LoadWithViper(initViper())
	if err != nil {
		return nil, err
	}
	globalConfig = config
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() *viper.Viper {
	mu.Lock()
	defer mu.Unlock()
	return initViper()
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path over the
// defaults, without consulting the environment.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}
	config, err := LoadWithViper(v)
	if err != nil {
		return nil, errors.Wrapf(err, "config file %s", configPath)
	}
	return config, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	globalConfig = nil
	viperInstance = nil
}

// initViper initializes Viper with configuration sources and defaults.
// Callers hold mu.
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	BindEnvVars(v)

	SetDefaults(v)

	// Precedence (lowest to highest): system < user < project < env vars
	for _, file := range SearchPaths() {
		if file.Exists {
			mergeConfigFile(v, file.Path)
		}
	}

	viperInstance = v
	return v
}

// ConfigFile is one location in the configuration cascade.
type ConfigFile struct {
	Source string `json:"source"`
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// SearchPaths lists the configuration files consulted, lowest precedence
// first. The project entry is omitted when no am.toml is found.
func SearchPaths() []ConfigFile {
	paths := []ConfigFile{{Source: "system", Path: "/etc/almanac/config.toml"}}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, ConfigFile{Source: "user", Path: filepath.Join(home, ".almanac", ProjectConfigName)})
	}
	if project := findProjectConfig(); project != "" {
		paths = append(paths, ConfigFile{Source: "project", Path: project})
	}

	for i := range paths {
		_, err := os.Stat(paths[i].Path)
		paths[i].Exists = err == nil
	}
	return paths
}

// findProjectConfig walks up from the working directory looking for am.toml.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ProjectConfigName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// mergeConfigFile layers one TOML file over v. Unreadable files are skipped.
func mergeConfigFile(v *viper.Viper, path string) {
	tmp := viper.New()
	tmp.SetConfigFile(path)
	tmp.SetConfigType("toml")
	if err := tmp.ReadInConfig(); err != nil {
		return
	}
	if err := v.MergeConfigMap(tmp.AllSettings()); err != nil {
		return
	}
}

// Get returns a configuration value using dot notation
func Get(key string) interface{} {
	return GetViper().Get(key)
}

// IsSet reports whether a key has a value from any source, defaults included
func IsSet(key string) bool {
	return GetViper().IsSet(key)
}
