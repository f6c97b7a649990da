package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Logger   Logger   `mapstructure:"logger"`
	Auth     Auth     `mapstructure:"auth"`
	Trading  Trading  `mapstructure:"trading"`
	Scanner  Scanner  `mapstructure:"scanner"`
}

// Server holds the configuration for the HTTP server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Auth holds the credentials and session-token settings. The username and
// password back the default static verifier; a real secret store can be
// swapped in behind the CredentialVerifier interface.
type Auth struct {
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	JWTSecret       string `mapstructure:"jwt_secret"`
	TokenTTLMinutes int    `mapstructure:"token_ttl_minutes"`
}

// Trading holds the journal's discipline rules: the approved strategy set,
// emotion tags, daily checklist limits, and the manual-entry guards.
type Trading struct {
	ApprovedStrategies []string `mapstructure:"approved_strategies"`
	Emotions           []string `mapstructure:"emotions"`
	MaxDailyTrades     int      `mapstructure:"max_daily_trades"`
	MaxDailyLoss       float64  `mapstructure:"max_daily_loss"`
	DailyProfitTarget  float64  `mapstructure:"daily_profit_target"`
	MaxShares          int      `mapstructure:"max_shares"`
	MaxInvestment      float64  `mapstructure:"max_investment"`
	MinStopDistance    float64  `mapstructure:"min_stop_distance"`
	HourWindowStart    int      `mapstructure:"hour_window_start"`
	HourWindowEnd      int      `mapstructure:"hour_window_end"`
}

// Scanner holds the configuration for the Finnhub stock scanner.
type Scanner struct {
	APIKey         string   `mapstructure:"api_key"`
	BaseURL        string   `mapstructure:"base_url"`
	Symbols        []string `mapstructure:"symbols"`
	RateLimit      float64  `mapstructure:"rate_limit"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.dsn", "tracker.db")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("auth.token_ttl_minutes", 720)
	viper.SetDefault("trading.approved_strategies", []string{"Gap & Go", "Momentum", "Reversals"})
	viper.SetDefault("trading.emotions", []string{"Calm", "Rushed", "Hesitant", "Confident"})
	viper.SetDefault("trading.max_daily_trades", 4)
	viper.SetDefault("trading.max_daily_loss", 100)
	viper.SetDefault("trading.daily_profit_target", 200)
	viper.SetDefault("trading.max_shares", 500)
	viper.SetDefault("trading.max_investment", 500)
	viper.SetDefault("trading.min_stop_distance", 0.10)
	viper.SetDefault("trading.hour_window_start", 9)
	viper.SetDefault("trading.hour_window_end", 12)
	viper.SetDefault("scanner.base_url", "https://finnhub.io/api/v1")
	viper.SetDefault("scanner.rate_limit", 1) // Finnhub free tier: 60 requests/min
	viper.SetDefault("scanner.rate_limit_burst", 1)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
