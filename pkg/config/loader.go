package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// BearerTokenEnv is read when the config file leaves api.bearer_token empty.
const BearerTokenEnv = "HASHGRAPH_BEARER_TOKEN"

// Load reads the YAML configuration file using strict parsing.
// An empty path returns the defaults. Environment references (${VAR}) are
// expanded after the optional dotenv file has been loaded, so secrets can
// live outside the config file.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("could not read configuration file '%s': %w", path, err)
		}

		// A first lenient pass only looks for env_file.
		var pre struct {
			EnvFile string `yaml:"env_file"`
		}
		_ = yaml.Unmarshal(data, &pre)
		if err := loadEnvFile(pre.EnvFile); err != nil {
			return cfg, err
		}

		decoder := yaml.NewDecoder(strings.NewReader(os.ExpandEnv(string(data))))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("YAML syntax error in '%s': %w", path, err)
		}
	} else if err := loadEnvFile(""); err != nil {
		return cfg, err
	}

	if cfg.API.BearerToken == "" {
		cfg.API.BearerToken = os.Getenv(BearerTokenEnv)
	}
	return cfg, nil
}

// loadEnvFile loads a dotenv file without overriding variables already set.
// An empty name tries ".env" and tolerates its absence.
func loadEnvFile(name string) error {
	optional := name == ""
	if optional {
		name = ".env"
	}
	if err := godotenv.Load(name); err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file '%s': %w", name, err)
	}
	return nil
}
