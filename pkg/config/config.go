package config

import "time"

type Config struct {
	App            AppConfig            `mapstructure:"app"`
	HTTP           HTTPConfig           `mapstructure:"http"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	NATS           NATSConfig           `mapstructure:"nats"`
	RabbitMQ       RabbitMQConfig       `mapstructure:"rabbitmq"`
	Vault          VaultConfig          `mapstructure:"vault"`
	Recognition    RecognitionConfig    `mapstructure:"recognition"`
	Speech         SpeechConfig         `mapstructure:"speech"`
	Dialogue       DialogueConfig       `mapstructure:"dialogue"`
	Rooms          RoomsConfig          `mapstructure:"rooms"`
	OpenTelemetry  OpenTelemetryConfig  `mapstructure:"opentelemetry"`
	Prometheus     PrometheusConfig     `mapstructure:"prometheus"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	CORS           CORSConfig           `mapstructure:"cors"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig is the optional reminder persistence. An empty URL
// leaves reminders in memory only.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// RedisConfig is the optional cross-restart memory. An empty URL falls
// back to the in-process cache.
type RedisConfig struct {
	URL         string        `mapstructure:"url"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// RabbitMQConfig selects the alternate lifecycle-event broker. When URL
// is set the dialogue events go to RabbitMQ instead of NATS subjects.
type RabbitMQConfig struct {
	URL string `mapstructure:"url"`
}

type VaultConfig struct {
	Address string `mapstructure:"address"`
	Token   string `mapstructure:"token"`
}

// RecognitionConfig selects how the speech engine is reached: the NATS
// bridge (default) or a direct websocket stream.
type RecognitionConfig struct {
	Transport string `mapstructure:"transport"` // "nats" or "stream"
	StreamURL string `mapstructure:"stream_url"`
	// GrammarPath is re-read on /api/v1/reload.
	GrammarPath string `mapstructure:"grammar_path"`
}

type SpeechConfig struct {
	SpeakTimeout time.Duration `mapstructure:"speak_timeout"`
}

// DialogueConfig carries the conversation timing knobs. Confidence
// thresholds are compiled in; see the domain package.
type DialogueConfig struct {
	PollSlice time.Duration `mapstructure:"poll_slice"`
	IdleSlice time.Duration `mapstructure:"idle_slice"`
	ReplyWait time.Duration `mapstructure:"reply_wait"`
	ConvoWait time.Duration `mapstructure:"convo_wait"`
}

// RoomsConfig points at the room snapshot file and names which room
// this instance runs.
type RoomsConfig struct {
	Path string `mapstructure:"path"`
	Room string `mapstructure:"room"`
}

type OpenTelemetryConfig struct {
	Enabled     bool              `mapstructure:"enabled"`
	Jaeger      JaegerConfig      `mapstructure:"jaeger"`
	ServiceName string            `mapstructure:"service_name"`
	Attributes  map[string]string `mapstructure:"attributes"`
}

type JaegerConfig struct {
	Endpoint     string  `mapstructure:"endpoint"`
	SamplerType  string  `mapstructure:"sampler_type"`
	SamplerParam float64 `mapstructure:"sampler_param"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Port    int    `mapstructure:"port"`
}

type LoggingConfig struct {
	Level    string          `mapstructure:"level"`
	Format   string          `mapstructure:"format"`
	Output   string          `mapstructure:"output"`
	Sampling LoggingSampling `mapstructure:"sampling"`
}

type LoggingSampling struct {
	Enabled    bool `mapstructure:"enabled"`
	Initial    int  `mapstructure:"initial"`
	Thereafter int  `mapstructure:"thereafter"`
}

// CircuitBreakerConfig tunes the automation-bus breaker. The breaker is
// always armed; zero values fall back to the executor's defaults.
type CircuitBreakerConfig struct {
	MaxRequests      int           `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold float64       `mapstructure:"failure_threshold"`
}

type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	ExposeHeaders  []string `mapstructure:"expose_headers"`
	MaxAge         int      `mapstructure:"max_age"`
	Credentials    bool     `mapstructure:"credentials"`
}
