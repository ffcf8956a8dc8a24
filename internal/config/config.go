package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort        string        `mapstructure:"HTTP_PORT"`
	GRPCPort        string        `mapstructure:"GRPC_PORT"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`

	Currency               string        `mapstructure:"CURRENCY"`
	ShippingRates          string        `mapstructure:"SHIPPING_RATES"`
	LoyaltyRate            int           `mapstructure:"LOYALTY_RATE"`
	DiscountDefaultPercent string        `mapstructure:"DISCOUNT_DEFAULT_PERCENT"`
	CartTTL                time.Duration `mapstructure:"CART_TTL"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     int    `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	CatalogDBPath   string `mapstructure:"CATALOG_DB_PATH"`
	CatalogGRPCAddr string `mapstructure:"CATALOG_GRPC_ADDR"`

	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
}

var defaults = map[string]any{
	"HTTP_PORT":                "8080",
	"GRPC_PORT":                "50060",
	"REQUEST_TIMEOUT":          "5s",
	"SHUTDOWN_TIMEOUT":         "10s",
	"LOG_LEVEL":                "info",
	"CURRENCY":                 "INR",
	"SHIPPING_RATES":           "upi=0,cod=30",
	"LOYALTY_RATE":             10,
	"DISCOUNT_DEFAULT_PERCENT": "newsletter=10,exit-intent=15,loyalty=20,referral=10",
	"CART_TTL":                 "72h",
	"DB_HOST":                  "localhost",
	"DB_PORT":                  "5432",
	"DB_USER":                  "postgres",
	"DB_PASSWORD":              "postgres",
	"DB_NAME":                  "storefront",
	"MONGO_URI":                "",
	"MONGO_DB_NAME":            "storefront",
	"REDIS_ADDR":               "localhost:6379",
	"REDIS_PASSWORD":           "",
	"CATALOG_DB_PATH":          "./data/catalog.db",
	"CATALOG_GRPC_ADDR":        "",
	"KAFKA_BROKERS":            "",
}

// Load reads configuration from the environment. When CONFIG_FILE names a file
// (.env, yaml, json) its values are read first and the environment overrides them.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if _, err := cfg.ShippingTable(); err != nil {
		return nil, err
	}
	if _, err := cfg.DiscountDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) ShippingTable() (pricing.ShippingTable, error) {
	table, err := pricing.ParseShippingTable(c.ShippingRates)
	if err != nil {
		return nil, fmt.Errorf("SHIPPING_RATES: %w", err)
	}
	return table, nil
}

// DiscountDefaults parses "type=percent" pairs, e.g. "newsletter=10,exit-intent=15".
func (c *Config) DiscountDefaults() (map[domain.CodeType]int, error) {
	out := make(map[domain.CodeType]int)
	for _, pair := range strings.Split(c.DiscountDefaultPercent, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("DISCOUNT_DEFAULT_PERCENT: invalid pair %q", pair)
		}
		codeType, err := domain.ParseCodeType(name)
		if err != nil {
			return nil, fmt.Errorf("DISCOUNT_DEFAULT_PERCENT: %w", err)
		}
		pct, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || pct < 0 || pct > 100 {
			return nil, fmt.Errorf("DISCOUNT_DEFAULT_PERCENT: %w: %q", domain.ErrInvalidPercentage, value)
		}
		out[codeType] = pct
	}
	return out, nil
}

func (c *Config) KafkaBrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
