// Package config holds the explicit configuration for a hashgraph run:
// upstream API credentials, campaign hashtag sets and output locations.
package config

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the format of the Since fields.
const DateLayout = "2006-01-02"

// Config is the top-level configuration file.
type Config struct {
	DataDir     string `yaml:"data_dir"`     // Raw record dumps, graph logs, tables
	OutputDir   string `yaml:"output_dir"`   // Statistics series and DOT files
	LogLevel    string `yaml:"log_level"`    // "debug", "info", "warn", "error"
	HTTPAddr    string `yaml:"http_addr"`    // ":9300"
	MetricsAddr string `yaml:"metrics_addr"` // Separate metrics listener for batch runs (empty = disabled)
	Workers     int    `yaml:"workers"`      // Graph build partitions per campaign
	EnvFile     string `yaml:"env_file"`     // Optional dotenv file with secrets
	AuthToken   string `yaml:"auth_token"`   // Bearer token required by the HTTP API (empty = open)
	StatsCache  int    `yaml:"stats_cache"`  // Reports kept in memory by the server
	Concurrency int    `yaml:"concurrency"`  // Campaigns fetched at the same time

	API       APIConfig  `yaml:"api"`
	Defaults  Defaults   `yaml:"defaults"`
	Campaigns []Campaign `yaml:"campaigns"`
}

// APIConfig configures the recent-search client.
type APIConfig struct {
	BaseURL     string        `yaml:"base_url"`
	BearerToken string        `yaml:"bearer_token"`
	Timeout     time.Duration `yaml:"timeout"`
	PageSize    int           `yaml:"page_size"`
}

// Defaults apply to campaigns that do not override them.
type Defaults struct {
	MaxPosts int    `yaml:"max_posts"`
	Since    string `yaml:"since"` // YYYY-MM-DD
	Lang     string `yaml:"lang"`
}

// Campaign is one hashtag query and the graph built from it.
type Campaign struct {
	Name       string   `yaml:"name"`
	Title      string   `yaml:"title"`
	FilePrefix string   `yaml:"file_prefix"`
	Hashtags   []string `yaml:"hashtags"`
	MaxPosts   int      `yaml:"max_posts"`
	Since      string   `yaml:"since"`
	Lang       string   `yaml:"lang"`
}

// DefaultConfig returns the stock setup: the two vaccine-debate campaigns.
func DefaultConfig() Config {
	return Config{
		DataDir:     "data",
		OutputDir:   "figures",
		LogLevel:    "info",
		HTTPAddr:    ":9300",
		Workers:     4,
		StatsCache:  64,
		Concurrency: 2,
		API: APIConfig{
			BaseURL:  "https://api.twitter.com/2",
			Timeout:  30 * time.Second,
			PageSize: 100,
		},
		Defaults: Defaults{
			MaxPosts: 300,
			Since:    "2019-12-12",
			Lang:     "en",
		},
		Campaigns: []Campaign{
			{
				Name:       "pro",
				Title:      "Pro Vaccine",
				FilePrefix: "proVaccineTweets",
				Hashtags: []string{
					"#GetVaccinated",
					"#VaccineMandate",
					"#VaccinesWork",
					"#FullyVaccinated",
					"GetVaccinatedOrGetCovid",
				},
			},
			{
				Name:       "anti",
				Title:      "Anti Vaccine",
				FilePrefix: "antiVaccineTweets",
				Hashtags: []string{
					"#vaccineinjury",
					"#NoVaccineMandates",
					"#SayNoToVaccineMandate",
					"#NoVaxMandates",
					"#AntiVaccine",
				},
			},
		},
	}
}

// ErrUnknownCampaign is returned when a campaign name is not configured.
var ErrUnknownCampaign = errors.New("unknown campaign")

// Campaign returns the named campaign with defaults applied.
func (c Config) Campaign(name string) (Campaign, error) {
	for _, cp := range c.Campaigns {
		if cp.Name == name {
			return c.resolve(cp), nil
		}
	}
	return Campaign{}, fmt.Errorf("%w: %q", ErrUnknownCampaign, name)
}

// ResolvedCampaigns returns every campaign with defaults applied.
func (c Config) ResolvedCampaigns() []Campaign {
	out := make([]Campaign, len(c.Campaigns))
	for i, cp := range c.Campaigns {
		out[i] = c.resolve(cp)
	}
	return out
}

func (c Config) resolve(cp Campaign) Campaign {
	if cp.MaxPosts <= 0 {
		cp.MaxPosts = c.Defaults.MaxPosts
	}
	if cp.Since == "" {
		cp.Since = c.Defaults.Since
	}
	if cp.Lang == "" {
		cp.Lang = c.Defaults.Lang
	}
	if cp.Title == "" {
		cp.Title = cp.Name
	}
	if cp.FilePrefix == "" {
		cp.FilePrefix = cp.Name
	}
	return cp
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var errs []error
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir must be set"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir must be set"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be positive, got %d", c.Concurrency))
	}
	if c.API.PageSize < 10 || c.API.PageSize > 100 {
		errs = append(errs, fmt.Errorf("api.page_size must be between 10 and 100, got %d", c.API.PageSize))
	}
	if c.Defaults.MaxPosts < 1 {
		errs = append(errs, fmt.Errorf("defaults.max_posts must be positive, got %d", c.Defaults.MaxPosts))
	}
	if _, err := time.Parse(DateLayout, c.Defaults.Since); err != nil {
		errs = append(errs, fmt.Errorf("defaults.since: %w", err))
	}

	seen := make(map[string]bool, len(c.Campaigns))
	for i, cp := range c.Campaigns {
		switch {
		case cp.Name == "":
			errs = append(errs, fmt.Errorf("campaigns[%d]: name must be set", i))
		case seen[cp.Name]:
			errs = append(errs, fmt.Errorf("campaigns[%d]: duplicate name %q", i, cp.Name))
		}
		seen[cp.Name] = true
		if len(cp.Hashtags) == 0 {
			errs = append(errs, fmt.Errorf("campaigns[%d] (%s): at least one hashtag is required", i, cp.Name))
		}
		if cp.Since != "" {
			if _, err := time.Parse(DateLayout, cp.Since); err != nil {
				errs = append(errs, fmt.Errorf("campaigns[%d] (%s): since: %w", i, cp.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}
