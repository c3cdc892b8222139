package config

import (
	"time"
)

type DB struct {
	Url string `envconfig:"URL"`
}

type Server struct {
	Host string `envconfig:"HOST" default:"localhost"`
	Port int    `envconfig:"PORT" default:"3000"`
	// RateLimit is the allowed requests per second per client IP;
	// zero disables the limiter.
	RateLimit int `envconfig:"RATE_LIMIT" default:"0"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[costwise]"`
}

type ExchangeRateAPI struct {
	APIKey      string        `envconfig:"API_KEY"`
	APIURL      string        `envconfig:"API_URL" default:"https://v6.exchangerate-api.com/v6"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
}

type FallbackRateAPI struct {
	APIURL      string        `envconfig:"API_URL" default:"https://api.frankfurter.dev/v1"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
}

type ExchangeRate struct {
	// CacheTTL bounds how long a fetched rate is considered fresh.
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	// FetchTimeout bounds the rate prefetch during project creation;
	// on timeout the project degrades to 1:1 rates.
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"3s"`
}

type Project struct {
	DefaultCurrency      string  `envconfig:"DEFAULT_CURRENCY" default:"USD"`
	MonthlyHoursStandard float64 `envconfig:"MONTHLY_HOURS_STANDARD" default:"160"`
}

type App struct {
	Env             string           `envconfig:"APP_ENV" default:"development"`
	Server          *Server          `envconfig:"SERVER"`
	Log             *Log             `envconfig:"LOG"`
	DB              *DB              `envconfig:"DATABASE"`
	ExchangeRate    *ExchangeRate    `envconfig:"EXCHANGE_RATE"`
	ExchangeRateAPI *ExchangeRateAPI `envconfig:"EXCHANGE_RATE_API"`
	FallbackRateAPI *FallbackRateAPI `envconfig:"FALLBACK_RATE_API"`
	Project         *Project         `envconfig:"PROJECT"`
}
