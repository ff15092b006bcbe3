package holdings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// apiKeyEnv is the environment variable consulted when the config file does
// not carry a provider API key.
const apiKeyEnv = "HOLDINGS_API_KEY"

// ProviderConfig configures the outbound quote provider boundary.
type ProviderConfig struct {
	// Endpoint is the base URL of the quote provider.
	Endpoint string `yaml:"endpoint"`
	// APIKey authenticates requests. Falls back to HOLDINGS_API_KEY.
	APIKey string `yaml:"api_key"`
}

// CacheConfig configures the two-tier quote cache and its rate-limit
// discipline. The values are configuration, not hardwired constants, so
// tests can shrink them with injected clocks.
type CacheConfig struct {
	// Dir is the folder backing the persistent store.
	Dir string `yaml:"dir"`
	// TransientTTL is the freshness window of the in-process store.
	TransientTTL time.Duration `yaml:"transient_ttl"`
	// PersistentTTL is the freshness window of the durable store.
	PersistentTTL time.Duration `yaml:"persistent_ttl"`
	// GroupSize is the number of identifiers fetched concurrently as one
	// rate-limit-respecting unit.
	GroupSize int `yaml:"group_size"`
	// GroupDelay is the unconditional pause between batch groups.
	GroupDelay time.Duration `yaml:"group_delay"`
}

// UnmarshalYAML decodes durations from their usual textual form ("5m",
// "24h"), which yaml cannot map onto time.Duration by itself.
func (c *CacheConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Dir           string `yaml:"dir"`
		TransientTTL  string `yaml:"transient_ttl"`
		PersistentTTL string `yaml:"persistent_ttl"`
		GroupSize     int    `yaml:"group_size"`
		GroupDelay    string `yaml:"group_delay"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	c.Dir = raw.Dir
	c.GroupSize = raw.GroupSize
	for _, f := range []struct {
		name string
		in   string
		out  *time.Duration
	}{
		{"transient_ttl", raw.TransientTTL, &c.TransientTTL},
		{"persistent_ttl", raw.PersistentTTL, &c.PersistentTTL},
		{"group_delay", raw.GroupDelay, &c.GroupDelay},
	} {
		if f.in == "" {
			continue
		}
		d, err := time.ParseDuration(f.in)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		}
		*f.out = d
	}
	return nil
}

// Config is the host configuration of the whole application.
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Cache    CacheConfig    `yaml:"cache"`
	// Currency is the display currency of monetary views.
	Currency string `yaml:"currency"`
	// Locale selects the collation used when sorting textual table cells.
	Locale string `yaml:"locale"`
	// Pseudo overrides the reserved ledger identifiers.
	Pseudo Pseudo `yaml:"pseudo"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderConfig{
			Endpoint: "https://www.alphavantage.co/query",
			APIKey:   os.Getenv(apiKeyEnv),
		},
		Cache: CacheConfig{
			Dir:           ".quotes",
			TransientTTL:  5 * time.Minute,
			PersistentTTL: 24 * time.Hour,
			GroupSize:     5,
			GroupDelay:    60 * time.Second,
		},
		Currency: "USD",
		Locale:   "en",
		Pseudo:   DefaultPseudo,
	}
}

// LoadConfig reads a YAML configuration file, filling unset values with
// defaults. A missing file is not an error: the defaults apply.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("cannot read config %q: %w", path, err)
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("invalid config %q: %w", path, err)
	}
	cfg.merge(file)
	return cfg, nil
}

// merge overlays non-zero values of o onto c.
func (c *Config) merge(o Config) {
	if o.Provider.Endpoint != "" {
		c.Provider.Endpoint = o.Provider.Endpoint
	}
	if o.Provider.APIKey != "" {
		c.Provider.APIKey = o.Provider.APIKey
	}
	if o.Cache.Dir != "" {
		c.Cache.Dir = o.Cache.Dir
	}
	if o.Cache.TransientTTL != 0 {
		c.Cache.TransientTTL = o.Cache.TransientTTL
	}
	if o.Cache.PersistentTTL != 0 {
		c.Cache.PersistentTTL = o.Cache.PersistentTTL
	}
	if o.Cache.GroupSize != 0 {
		c.Cache.GroupSize = o.Cache.GroupSize
	}
	if o.Cache.GroupDelay != 0 {
		c.Cache.GroupDelay = o.Cache.GroupDelay
	}
	if o.Currency != "" {
		c.Currency = o.Currency
	}
	if o.Locale != "" {
		c.Locale = o.Locale
	}
	if o.Pseudo.Cash != "" {
		c.Pseudo.Cash = o.Pseudo.Cash
	}
	if o.Pseudo.CapitalGainsTax != "" {
		c.Pseudo.CapitalGainsTax = o.Pseudo.CapitalGainsTax
	}
	if o.Pseudo.Other != "" {
		c.Pseudo.Other = o.Pseudo.Other
	}
}
