package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ModeDryRun = "DRY_RUN"
	ModeLive   = "LIVE"

	// WishlistSlots is the fixed number of wishlist tabs.
	WishlistSlots = 10
)

// Credentials for the Kite Connect session. They come from the environment
// only and are never read from the YAML file.
type Credentials struct {
	APIKey      string `yaml:"-"`
	APISecret   string `yaml:"-"`
	AccessToken string `yaml:"-"`
}

type Config struct {
	Mode           string      `yaml:"mode"`
	PollIntervalMs int         `yaml:"poll_interval_ms"`
	Credentials    Credentials `yaml:"-"`
	Wishlists      struct {
		Dir         string `yaml:"dir"`
		Slots       int    `yaml:"slots"`
		FilePattern string `yaml:"file_pattern"`
	} `yaml:"wishlists"`
	Exchanges struct {
		Quote   []string `yaml:"quote"`
		Catalog []string `yaml:"catalog"`
		Order   string   `yaml:"order"`
	} `yaml:"exchanges"`
	Order struct {
		Variety  string `yaml:"variety"`
		Type     string `yaml:"type"`
		Product  string `yaml:"product"`
		Validity string `yaml:"validity"`
	} `yaml:"order"`
	Stream struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"stream"`
	StartupOrder struct {
		Enabled *bool  `yaml:"enabled"`
		Symbol  string `yaml:"symbol"`
		Qty     int    `yaml:"qty"`
		Side    string `yaml:"side"`
	} `yaml:"startup_order"`
	LogRetentionDays int `yaml:"log_retention_days"`
}

// PollInterval is the pause after each full fetch pass.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c *Config) StartupOrderEnabled() bool {
	return c.StartupOrder.Enabled == nil || *c.StartupOrder.Enabled
}

func (c *Config) Validate() error {
	if c.Mode != ModeDryRun && c.Mode != ModeLive {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if c.PollIntervalMs <= 0 {
		return fmt.Errorf("poll_interval_ms must be positive, got %d", c.PollIntervalMs)
	}
	if c.Wishlists.Slots != WishlistSlots {
		return fmt.Errorf("wishlists.slots must be %d, got %d", WishlistSlots, c.Wishlists.Slots)
	}
	if !strings.Contains(c.Wishlists.FilePattern, "%d") {
		return fmt.Errorf("wishlists.file_pattern must contain %%d, got '%s'", c.Wishlists.FilePattern)
	}
	if len(c.Exchanges.Quote) == 0 {
		return errors.New("exchanges.quote cannot be empty")
	}
	if c.Mode == ModeLive && (c.Credentials.APIKey == "" || c.Credentials.AccessToken == "") {
		return errors.New("LIVE mode requires KITE_API_KEY and KITE_ACCESS_TOKEN")
	}
	if c.StartupOrderEnabled() {
		if c.StartupOrder.Side != "BUY" && c.StartupOrder.Side != "SELL" {
			return fmt.Errorf("startup_order.side must be 'BUY' or 'SELL', got '%s'", c.StartupOrder.Side)
		}
		if c.StartupOrder.Qty <= 0 {
			return fmt.Errorf("startup_order.qty must be positive, got %d", c.StartupOrder.Qty)
		}
		if c.StartupOrder.Symbol == "" {
			return errors.New("startup_order.symbol cannot be empty")
		}
	}
	return nil
}

// LoadConfig reads the YAML file at path, fills defaults, overlays the
// credentials from the environment and validates the result. A missing
// file is not an error: every field has a default.
func LoadConfig(path string) (*Config, error) {
	var c Config

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	c.applyDefaults()
	c.Credentials = CredentialsFromEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func CredentialsFromEnv() Credentials {
	return Credentials{
		APIKey:      os.Getenv("KITE_API_KEY"),
		APISecret:   os.Getenv("KITE_API_SECRET"),
		AccessToken: os.Getenv("KITE_ACCESS_TOKEN"),
	}
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeDryRun
	}
	c.Mode = strings.ToUpper(c.Mode)
	if c.PollIntervalMs == 0 {
		c.PollIntervalMs = 1000
	}
	if c.Wishlists.Dir == "" {
		c.Wishlists.Dir = "."
	}
	if c.Wishlists.Slots == 0 {
		c.Wishlists.Slots = WishlistSlots
	}
	if c.Wishlists.FilePattern == "" {
		c.Wishlists.FilePattern = "wishlist_tab_%d.json"
	}
	if len(c.Exchanges.Quote) == 0 {
		c.Exchanges.Quote = []string{"NSE", "NFO"}
	}
	if len(c.Exchanges.Catalog) == 0 {
		c.Exchanges.Catalog = []string{"NSE", "NFO"}
	}
	if c.Exchanges.Order == "" {
		c.Exchanges.Order = "NSE"
	}
	if c.Order.Variety == "" {
		c.Order.Variety = "regular"
	}
	if c.Order.Type == "" {
		c.Order.Type = "LIMIT"
	}
	if c.Order.Product == "" {
		c.Order.Product = "CNC"
	}
	if c.Order.Validity == "" {
		c.Order.Validity = "DAY"
	}
	if c.StartupOrder.Symbol == "" {
		c.StartupOrder.Symbol = "RELIANCE"
	}
	if c.StartupOrder.Qty == 0 {
		c.StartupOrder.Qty = 1
	}
	if c.StartupOrder.Side == "" {
		c.StartupOrder.Side = "BUY"
	}
	c.StartupOrder.Side = strings.ToUpper(c.StartupOrder.Side)
}
