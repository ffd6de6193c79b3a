package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Platform PlatformConfig
	Maps     MapsConfig
	Booking  BookingConfig
	Poll     PollConfig
	Chat     ChatConfig
	Fare     FareConfig
	Rental   RentalConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// PlatformConfig holds the remote ride-platform API configuration.
// Every outbound call carries an explicit timeout so a suspended request
// can never hang the orchestration indefinitely.
type PlatformConfig struct {
	BaseURL        string
	AuthToken      string
	RequestTimeout time.Duration // quote, submit, status, cancel, chat
	DetailTimeout  time.Duration // heavyweight ride detail
	RecalcTimeout  time.Duration // rental recalculation
}

// MapsConfig holds Google Maps configuration for route estimation.
type MapsConfig struct {
	APIKey  string
	Enabled bool
}

// BookingConfig holds the booking coordinator timers.
type BookingConfig struct {
	PoolingEscalationDelay time.Duration // flips the pooling flag while still searching
	SearchTimeout          time.Duration // overall "no drivers found" timeout
	CancelTimeout          time.Duration // deadline for the cancel call fired after a timeout
}

// PollConfig holds the status poller cadence and retry policy.
type PollConfig struct {
	LightInterval time.Duration
	HeavyRetries  int
	HeavyBackoff  time.Duration
}

// ChatConfig holds the adaptive chat poll intervals.
type ChatConfig struct {
	ActiveInterval time.Duration // chat view foregrounded
	IdleInterval   time.Duration // ride ongoing, user elsewhere in the app
}

// FareConfig holds the discount rules applied by the fare engine.
type FareConfig struct {
	CouponPercents  map[string]int // coupon code -> percent off
	CashbackMinFare int64          // minimum post-discount fare for cashback eligibility
	CashbackCapPct  int            // cashback cap as percent of post-discount fare
}

// RentalConfig holds the rental recalculation fallback parameters.
type RentalConfig struct {
	ExtraKmPerHour float64 // distance allowance added per extra hour in the fallback estimate
}

// Load loads configuration from the environment, reading a .env file first
// if one is present.
func Load() *Config {
	_ = godotenv.Load(".env")

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			Debug:        getBoolEnv("SERVER_DEBUG", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "rider-orchestrator"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Platform: PlatformConfig{
			BaseURL:        getEnv("PLATFORM_BASE_URL", "http://localhost:9090"),
			AuthToken:      getEnv("PLATFORM_AUTH_TOKEN", ""),
			RequestTimeout: getDurationEnv("PLATFORM_REQUEST_TIMEOUT", 8*time.Second),
			DetailTimeout:  getDurationEnv("PLATFORM_DETAIL_TIMEOUT", 15*time.Second),
			RecalcTimeout:  getDurationEnv("PLATFORM_RECALC_TIMEOUT", 10*time.Second),
		},
		Maps: MapsConfig{
			APIKey:  getEnv("MAPS_API_KEY", ""),
			Enabled: getBoolEnv("MAPS_ENABLED", false),
		},
		Booking: BookingConfig{
			PoolingEscalationDelay: getDurationEnv("BOOKING_POOLING_DELAY", 4*time.Second),
			SearchTimeout:          getDurationEnv("BOOKING_SEARCH_TIMEOUT", 120*time.Second),
			CancelTimeout:          getDurationEnv("BOOKING_CANCEL_TIMEOUT", 5*time.Second),
		},
		Poll: PollConfig{
			LightInterval: getDurationEnv("POLL_LIGHT_INTERVAL", 3*time.Second),
			HeavyRetries:  getIntEnv("POLL_HEAVY_RETRIES", 3),
			HeavyBackoff:  getDurationEnv("POLL_HEAVY_BACKOFF", 2*time.Second),
		},
		Chat: ChatConfig{
			ActiveInterval: getDurationEnv("CHAT_ACTIVE_INTERVAL", 2*time.Second),
			IdleInterval:   getDurationEnv("CHAT_IDLE_INTERVAL", 10*time.Second),
		},
		Fare: FareConfig{
			CouponPercents:  getCouponEnv("FARE_COUPON_RULES", map[string]int{"SAVE10": 10, "SAVE15": 15}),
			CashbackMinFare: getInt64Env("FARE_CASHBACK_MIN_FARE", 100),
			CashbackCapPct:  getIntEnv("FARE_CASHBACK_CAP_PCT", 30),
		},
		Rental: RentalConfig{
			ExtraKmPerHour: getFloatEnv("RENTAL_EXTRA_KM_PER_HOUR", 15),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		return cast.ToInt(value)
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		return cast.ToInt64(value)
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		return cast.ToFloat64(value)
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return cast.ToBool(value)
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getCouponEnv parses "CODE1:10,CODE2:15" into a coupon rule map.
func getCouponEnv(key string, defaultValue map[string]int) map[string]int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	rules := make(map[string]int)
	for _, pair := range strings.Split(value, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			continue
		}
		if pct := cast.ToInt(parts[1]); pct > 0 {
			rules[strings.ToUpper(strings.TrimSpace(parts[0]))] = pct
		}
	}
	if len(rules) == 0 {
		return defaultValue
	}
	return rules
}
