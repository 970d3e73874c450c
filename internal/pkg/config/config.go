package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/production.yaml"

// Brand integration types accepted in brands[].type.
const (
	TypeClubReady  = "clubready"
	TypeMindbody   = "mindbody"
	TypeWebCapture = "webcapture"
	TypeHTMLScrape = "htmlscrape"
)

// Insert policies for classes whose derived id already exists.
const (
	InsertSkip   = "skip"
	InsertUpsert = "upsert"
)

type Config struct {
	Postgres  PostgresConfig  `yaml:"postgres"`
	Logging   LoggingConfig   `yaml:"logging"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	Browser   BrowserConfig   `yaml:"browser"`
	Mindbody  MindbodyConfig  `yaml:"mindbody"`
	ClubReady ClubReadyConfig `yaml:"clubready"`
	Redis     RedisConfig     `yaml:"redis"`
	Health    HealthConfig    `yaml:"health"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Brands    []BrandConfig   `yaml:"brands"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	File   string `yaml:"file"`   // optional JSON sink
}

type ScraperConfig struct {
	Schedule        string        `yaml:"schedule"`
	RunOnStartup    bool          `yaml:"run_on_startup"`
	PolitenessDelay time.Duration `yaml:"politeness_delay"`
	Retention       time.Duration `yaml:"retention"`
	InsertPolicy    string        `yaml:"insert_policy"`
	PassTimeout     time.Duration `yaml:"pass_timeout"`
	EnabledBrands   []string      `yaml:"enabled_brands"`
	UserAgent       string        `yaml:"user_agent"`
	Proxy           string        `yaml:"proxy"`
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	Retry           RetryConfig   `yaml:"retry"`
}

type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries"`
	BaseDelay  time.Duration `yaml:"base_delay"`
}

type BrowserConfig struct {
	Headless        *bool         `yaml:"headless"` // default true
	PageLoadTimeout time.Duration `yaml:"page_load_timeout"`
	SettleWait      time.Duration `yaml:"settle_wait"`
	InteractionWait time.Duration `yaml:"interaction_wait"`
}

type MindbodyConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type ClubReadyConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LockKey  string        `yaml:"lock_key"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

type HealthConfig struct {
	Addr string `yaml:"addr"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

// BrandConfig is one row of the registration table. Order in the file is run order.
type BrandConfig struct {
	Name            string           `yaml:"name"`
	Brand           string           `yaml:"brand"`
	StudioName      string           `yaml:"studio_name"`
	Type            string           `yaml:"type"`
	Timezone        string           `yaml:"timezone"`
	WindowDays      int              `yaml:"window_days"`
	DefaultDuration int              `yaml:"default_duration"`
	Capacity        int              `yaml:"capacity"`
	FirstHour       int              `yaml:"first_hour"`
	HourStep        int              `yaml:"hour_step"`
	ClassesPerDay   int              `yaml:"classes_per_day"`
	BookingURL      string           `yaml:"booking_url"`
	CaptureHosts    []string         `yaml:"capture_hosts"` // extra URL tokens worth intercepting
	ClassTypes      []ClassType      `yaml:"class_types"`
	Instructors     []string         `yaml:"instructors"`
	Locations       []LocationConfig `yaml:"locations"`
}

type ClassType struct {
	Name     string `yaml:"name"`
	Level    string `yaml:"level"`
	Duration int    `yaml:"duration"`
}

type LocationConfig struct {
	StudioID    string   `yaml:"studio_id"`
	Name        string   `yaml:"name"`
	City        string   `yaml:"city"`
	Address     string   `yaml:"address"`
	Latitude    *float64 `yaml:"latitude"`
	Longitude   *float64 `yaml:"longitude"`
	WebsiteURL  string   `yaml:"website_url"`
	Phone       string   `yaml:"phone"`
	SiteID      string   `yaml:"site_id"`
	StoreID     string   `yaml:"store_id"`
	ScheduleURL string   `yaml:"schedule_url"`
}

// IsHeadless defaults to true when the key is absent.
func (b BrowserConfig) IsHeadless() bool {
	return b.Headless == nil || *b.Headless
}

// Location resolves the brand's configured time zone, UTC when unset.
func (b BrandConfig) Location() *time.Location {
	if b.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads the YAML file, overlays environment secrets (a .env file next to the
// working directory is honored), fills defaults and validates.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse is Load without the file read.
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	_ = godotenv.Load()
	config.applyEnv(os.Getenv)
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// ResolvePath picks the config path: explicit flag, then CONFIG_PATH, then the default.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("DATABASE_URL"); v != "" {
		c.Postgres.DSN = v
	}
	if v := getenv("MINDBODY_API_KEY"); v != "" {
		c.Mindbody.APIKey = v
	}
	if v := getenv("CLUBREADY_API_KEY"); v != "" {
		c.ClubReady.APIKey = v
	}
	if v := firstNonEmpty(getenv("HTTP_PROXY"), getenv("http_proxy")); v != "" {
		c.Scraper.Proxy = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telegram.ChatID = id
		}
	}
}

// Default returns the settings used for keys the file leaves out. Parse decodes on top of
// it, so an explicit zero such as `politeness_delay: 0s` is kept.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Scraper: ScraperConfig{
			Schedule:        "@every 30m",
			PolitenessDelay: time.Second,
			Retention:       24 * time.Hour,
			InsertPolicy:    InsertSkip,
			PassTimeout:     25 * time.Minute,
			UserAgent:       defaultUserAgent,
			HTTPTimeout:     30 * time.Second,
			Retry:           RetryConfig{MaxRetries: 3, BaseDelay: time.Second},
		},
		Browser: BrowserConfig{
			PageLoadTimeout: 30 * time.Second,
			SettleWait:      2 * time.Second,
			InteractionWait: 2 * time.Second,
		},
		Mindbody:  MindbodyConfig{BaseURL: "https://api.mindbodyonline.com"},
		ClubReady: ClubReadyConfig{BaseURL: "https://www.clubready.com"},
		Redis:     RedisConfig{LockKey: "scraper:pass-lock", LockTTL: 30 * time.Minute},
		Health:    HealthConfig{Addr: ":8080"},
	}
}

// DefaultBrand holds the per-brand defaults applied to every brands[] entry before decoding.
func DefaultBrand() BrandConfig {
	return BrandConfig{
		WindowDays:      7,
		DefaultDuration: 50,
		Capacity:        20,
		FirstHour:       6,
		HourStep:        2,
		ClassesPerDay:   6,
	}
}

// UnmarshalYAML decodes a brands[] entry over DefaultBrand.
func (b *BrandConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain BrandConfig
	p := plain(DefaultBrand())
	if err := value.Decode(&p); err != nil {
		return err
	}
	*b = BrandConfig(p)
	return nil
}

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// applyDefaults fills settings an empty string cannot meaningfully set.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
	if c.Scraper.Schedule == "" {
		c.Scraper.Schedule = d.Scraper.Schedule
	}
	if c.Scraper.InsertPolicy == "" {
		c.Scraper.InsertPolicy = d.Scraper.InsertPolicy
	}
	if c.Scraper.UserAgent == "" {
		c.Scraper.UserAgent = d.Scraper.UserAgent
	}
	if c.Mindbody.BaseURL == "" {
		c.Mindbody.BaseURL = d.Mindbody.BaseURL
	}
	if c.ClubReady.BaseURL == "" {
		c.ClubReady.BaseURL = d.ClubReady.BaseURL
	}
	if c.Redis.LockKey == "" {
		c.Redis.LockKey = d.Redis.LockKey
	}
	if c.Health.Addr == "" {
		c.Health.Addr = d.Health.Addr
	}
	for i := range c.Brands {
		if c.Brands[i].StudioName == "" {
			c.Brands[i].StudioName = c.Brands[i].Brand
		}
	}
}

// Validate checks the registration table and enum-like settings.
func (c *Config) Validate() error {
	var errs []error

	switch c.Scraper.InsertPolicy {
	case InsertSkip, InsertUpsert:
	default:
		errs = append(errs, fmt.Errorf("scraper.insert_policy %q: want %q or %q", c.Scraper.InsertPolicy, InsertSkip, InsertUpsert))
	}
	if c.Scraper.PolitenessDelay < 0 {
		errs = append(errs, errors.New("scraper.politeness_delay must not be negative"))
	}
	if c.Scraper.Retention <= 0 {
		errs = append(errs, errors.New("scraper.retention must be positive"))
	}
	if c.Scraper.PassTimeout <= 0 {
		errs = append(errs, errors.New("scraper.pass_timeout must be positive"))
	}
	if c.Scraper.Retry.MaxRetries < 0 || c.Scraper.Retry.BaseDelay < 0 {
		errs = append(errs, errors.New("scraper.retry values must not be negative"))
	}

	names := make(map[string]struct{}, len(c.Brands))
	brands := make(map[string]struct{}, len(c.Brands))
	for i, b := range c.Brands {
		name := strings.ToLower(strings.TrimSpace(b.Name))
		brand := strings.ToLower(strings.TrimSpace(b.Brand))
		if name == "" || brand == "" {
			errs = append(errs, fmt.Errorf("brands[%d]: name and brand are required", i))
			continue
		}
		if _, dup := names[name]; dup {
			errs = append(errs, fmt.Errorf("brands[%d]: duplicate name %q", i, b.Name))
		}
		if _, dup := brands[brand]; dup {
			errs = append(errs, fmt.Errorf("brands[%d]: duplicate brand %q", i, b.Brand))
		}
		names[name] = struct{}{}
		brands[brand] = struct{}{}

		switch b.Type {
		case TypeClubReady, TypeMindbody, TypeWebCapture, TypeHTMLScrape:
		default:
			errs = append(errs, fmt.Errorf("brands[%d] %s: unknown type %q", i, b.Name, b.Type))
		}
		if len(b.Locations) == 0 {
			errs = append(errs, fmt.Errorf("brands[%d] %s: at least one location is required", i, b.Name))
		}
		if len(b.ClassTypes) == 0 {
			errs = append(errs, fmt.Errorf("brands[%d] %s: at least one class type is required", i, b.Name))
		}
		if b.FirstHour < 0 || b.FirstHour > 23 {
			errs = append(errs, fmt.Errorf("brands[%d] %s: first_hour %d out of range 0-23", i, b.Name, b.FirstHour))
		}
		if b.WindowDays < 1 || b.HourStep < 1 || b.ClassesPerDay < 1 || b.Capacity < 1 || b.DefaultDuration < 1 {
			errs = append(errs, fmt.Errorf("brands[%d] %s: window_days, hour_step, classes_per_day, capacity and default_duration must be positive", i, b.Name))
		}
		for j, loc := range b.Locations {
			if strings.TrimSpace(loc.StudioID) == "" {
				errs = append(errs, fmt.Errorf("brands[%d] %s: locations[%d] has no studio_id", i, b.Name, j))
			}
		}
		if b.Timezone != "" {
			if _, err := time.LoadLocation(b.Timezone); err != nil {
				errs = append(errs, fmt.Errorf("brands[%d] %s: timezone: %w", i, b.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// BrandEnabled reports whether a brand slug is selected by scraper.enabled_brands (empty = all).
func (c *Config) BrandEnabled(name string) bool {
	if len(c.Scraper.EnabledBrands) == 0 {
		return true
	}
	for _, n := range c.Scraper.EnabledBrands {
		if strings.EqualFold(strings.TrimSpace(n), name) {
			return true
		}
	}
	return false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
