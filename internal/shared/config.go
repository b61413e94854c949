package shared

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config is read from defaults, then the optional YAML file named by
// CONFIG_PATH, then the environment. Later sources win.
type Config struct {
	AppEnv      string `yaml:"app_env"`
	LogLevel    string `yaml:"log_level"`
	HTTPAddr    string `yaml:"http_addr"`
	MetricsAddr string `yaml:"metrics_addr"`

	TravelBase       string `yaml:"travel_api_base_url"`
	TravelAuthScheme string `yaml:"travel_api_auth_scheme"`
	TravelRPS        int    `yaml:"travel_api_rps"`
	TravelTimeoutSec int    `yaml:"travel_api_timeout_seconds"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPass     string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	SessionTTLSec int    `yaml:"session_ttl_seconds"`
	CacheTTLSec   int    `yaml:"cache_ttl_seconds"`
	TokenFile     string `yaml:"token_file"`

	MySQLDSN string `yaml:"mysql_dsn"`

	KafkaBrokers      []string `yaml:"kafka_brokers"`
	KafkaBookingTopic string   `yaml:"kafka_booking_topic"`
	KafkaGroupID      string   `yaml:"kafka_group_id"`

	SummaryWorkers int `yaml:"summary_workers"`
}

func (c Config) TravelTimeout() time.Duration {
	return time.Duration(c.TravelTimeoutSec) * time.Second
}

func (c Config) SessionTTL() time.Duration { return time.Duration(c.SessionTTLSec) * time.Second }

func (c Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLSec) * time.Second }

func defaults() Config {
	return Config{
		AppEnv:            "prod",
		LogLevel:          "info",
		HTTPAddr:          ":8080",
		MetricsAddr:       ":9100",
		TravelBase:        "http://localhost:8000",
		TravelAuthScheme:  "Token",
		TravelRPS:         5,
		TravelTimeoutSec:  20,
		SessionTTLSec:     3600,
		CacheTTLSec:       900,
		KafkaBookingTopic: "travel.bookings",
		KafkaGroupID:      "travel-journal",
		SummaryWorkers:    4,
	}
}

// Load reads the process configuration.
func Load() (Config, error) {
	return LoadFrom(os.Getenv("CONFIG_PATH"), os.Getenv)
}

// LoadFrom is Load with the YAML path and environment lookup supplied.
func LoadFrom(path string, getenv func(string) string) (Config, error) {
	c := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	str := func(dst *string, k string) {
		if v := getenv(k); v != "" {
			*dst = v
		}
	}
	atoi := func(dst *int, k string) {
		if v := getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			} else {
				log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric setting")
			}
		}
	}

	str(&c.AppEnv, "APP_ENV")
	str(&c.LogLevel, "LOG_LEVEL")
	str(&c.HTTPAddr, "HTTP_ADDR")
	str(&c.MetricsAddr, "METRICS_ADDR")
	str(&c.TravelBase, "TRAVEL_API_BASE_URL")
	str(&c.TravelAuthScheme, "TRAVEL_API_AUTH_SCHEME")
	atoi(&c.TravelRPS, "TRAVEL_API_RPS")
	atoi(&c.TravelTimeoutSec, "TRAVEL_API_TIMEOUT_SECONDS")
	str(&c.RedisAddr, "REDIS_ADDR")
	str(&c.RedisPass, "REDIS_PASSWORD")
	atoi(&c.RedisDB, "REDIS_DB")
	atoi(&c.SessionTTLSec, "SESSION_TTL_SECONDS")
	atoi(&c.CacheTTLSec, "CACHE_TTL_SECONDS")
	str(&c.TokenFile, "TOKEN_FILE")
	str(&c.MySQLDSN, "MYSQL_DSN")
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.KafkaBrokers = splitList(v)
	}
	str(&c.KafkaBookingTopic, "KAFKA_BOOKING_TOPIC")
	str(&c.KafkaGroupID, "KAFKA_GROUP_ID")
	atoi(&c.SummaryWorkers, "SUMMARY_WORKERS")

	if c.TravelBase == "" {
		return c, fmt.Errorf("TRAVEL_API_BASE_URL is empty")
	}
	return c, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
