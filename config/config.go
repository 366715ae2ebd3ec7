package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the application-wide configuration tree.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Mail      MailConfig      `mapstructure:"mail"`
	Log       LogConfig       `mapstructure:"log"`
	Planning  PlanningConfig  `mapstructure:"planning"`
	Geocoding GeocodingConfig `mapstructure:"geocoding"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig HTTP server settings.
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig cross-origin settings.
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL settings.
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// DSN builds the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig cache settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT settings.
type AuthConfig struct {
	JWTSecret               string        `mapstructure:"jwt_secret"`
	AccessTokenTTL          time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTLDefault  time.Duration `mapstructure:"refresh_token_ttl_default"`
	RefreshTokenTTLRemember time.Duration `mapstructure:"refresh_token_ttl_remember_me"`
}

// MailConfig SMTP settings used by the invite dispatcher notifications.
type MailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// LogConfig logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PlanningConfig tuning knobs for the itinerary engine.
//
// Fuel efficiency deliberately uses a single constant for both per-visit
// estimates and itinerary totals (8 km/L); two different divisors would make
// the aggregates disagree with the sum of their items.
type PlanningConfig struct {
	WorkdayStart      string  `mapstructure:"workday_start"`        // "08:00"
	WorkdayEnd        string  `mapstructure:"workday_end"`          // "18:00"
	SlotMinutes       int     `mapstructure:"slot_minutes"`         // granularity
	LunchStart        string  `mapstructure:"lunch_start"`          // "12:00"
	LunchEnd          string  `mapstructure:"lunch_end"`            // "13:00"
	AverageSpeedKmh   float64 `mapstructure:"average_speed_kmh"`    // urban average
	TrafficFactor     float64 `mapstructure:"traffic_factor"`       // multiplier on travel time
	VehicleEfficiency float64 `mapstructure:"vehicle_efficiency"`   // km per liter
	FuelPricePerLiter float64 `mapstructure:"fuel_price_per_liter"` // currency units
	BaseLatitude      float64 `mapstructure:"base_latitude"`        // departure point for legs
	BaseLongitude     float64 `mapstructure:"base_longitude"`
}

// GeocodingConfig external geocoding boundary settings.
type GeocodingConfig struct {
	PostalCodeURL string        `mapstructure:"postal_code_url"`
	AddressURL    string        `mapstructure:"address_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
}

// SchedulerConfig recurring auto-invite dispatcher settings.
type SchedulerConfig struct {
	AutoInviteEnabled bool   `mapstructure:"auto_invite_enabled"`
	MorningCron       string `mapstructure:"morning_cron"`
	ReinforceCron     string `mapstructure:"reinforce_cron"`
}

// Load reads configuration from file and environment.
//// Precedence: environment variables > config file > defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── defaults ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "smartch")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "America/Fortaleza")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.refresh_token_ttl_default", "24h")
	v.SetDefault("auth.refresh_token_ttl_remember_me", "168h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("planning.workday_start", "08:00")
	v.SetDefault("planning.workday_end", "18:00")
	v.SetDefault("planning.slot_minutes", 30)
	v.SetDefault("planning.lunch_start", "12:00")
	v.SetDefault("planning.lunch_end", "13:00")
	v.SetDefault("planning.average_speed_kmh", 40.0)
	v.SetDefault("planning.traffic_factor", 1.3)
	v.SetDefault("planning.vehicle_efficiency", 8.0)
	v.SetDefault("planning.fuel_price_per_liter", 5.50)
	// Company base in Fortaleza/CE; legs are estimated base → client.
	v.SetDefault("planning.base_latitude", -3.7319)
	v.SetDefault("planning.base_longitude", -38.5267)

	v.SetDefault("geocoding.postal_code_url", "https://brasilapi.com.br/api/cep/v2")
	v.SetDefault("geocoding.address_url", "https://nominatim.openstreetmap.org/search")
	v.SetDefault("geocoding.timeout", "5s")
	v.SetDefault("geocoding.cache_ttl", "720h")

	v.SetDefault("scheduler.auto_invite_enabled", true)
	v.SetDefault("scheduler.morning_cron", "0 6 * * *")
	v.SetDefault("scheduler.reinforce_cron", "0 9,13,17 * * *")

	// ── config file ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── environment ──
	v.SetEnvPrefix("SMARTCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// no config file: defaults + environment only
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings that have no safe fallback.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: auth.jwt_secret must not be empty")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("config: auth.jwt_secret must be at least 16 characters")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be between 1 and 65535")
	}
	if c.Planning.SlotMinutes <= 0 || c.Planning.SlotMinutes > 120 {
		return fmt.Errorf("config: planning.slot_minutes must be between 1 and 120")
	}
	if c.Planning.VehicleEfficiency <= 0 {
		return fmt.Errorf("config: planning.vehicle_efficiency must be positive")
	}
	if c.Planning.AverageSpeedKmh <= 0 {
		return fmt.Errorf("config: planning.average_speed_kmh must be positive")
	}
	return nil
}
