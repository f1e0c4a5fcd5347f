// Package config defines all configuration structures for PaidUp.  No I/O or
// parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Kafka producer parameters for domain events.
type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Acks         string        `mapstructure:"acks"` // "none" | "one" | "all"
	MaxRetries   int           `mapstructure:"max_retries"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Enabled      bool          `mapstructure:"enabled"`
}

// MinIOConfig holds the object-storage parameters for form template assets.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string   `mapstructure:"format"` // "json" | "console"
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// InterestConfig parameterises the statutory interest regimes.  The B2B rate
// under the Late Payment of Commercial Debts (Interest) Act 1998 is the
// statutory 8% plus the Bank of England base rate; the base rate changes over
// time and is therefore a configuration input, never a hardcoded figure.
type InterestConfig struct {
	// StatutoryRatePercent is the fixed statutory element of the B2B rate.
	StatutoryRatePercent float64 `mapstructure:"statutory_rate_percent"`

	// BaseRatePercent is the Bank of England base rate added on top for B2B.
	BaseRatePercent float64 `mapstructure:"base_rate_percent"`

	// CountyCourtRatePercent is the B2C rate under s.69 County Courts Act 1984.
	CountyCourtRatePercent float64 `mapstructure:"county_court_rate_percent"`
}

// ProtocolConfig parameterises pre-action procedural offsets, all expressed
// in days.  Escalation offsets anchor to the invoice due date; response
// windows anchor to the date an LBA was sent.
type ProtocolConfig struct {
	FirstChaserAfterDays       int `mapstructure:"first_chaser_after_days"`
	FinalDemandAfterDays       int `mapstructure:"final_demand_after_days"`
	LBASuggestedAfterDays      int `mapstructure:"lba_suggested_after_days"`
	ResponseWindowIndividual   int `mapstructure:"response_window_individual_days"`
	ResponseWindowCompany      int `mapstructure:"response_window_company_days"`
	CourtFilingGraceAfterDays  int `mapstructure:"court_filing_grace_after_days"`
	ChaserRecommendedOverdueBy int `mapstructure:"chaser_recommended_overdue_by"`
}

// FormsConfig pins the official Form N1 template this build is calibrated
// against.  The filler refuses to write anything when the loaded asset does
// not match these expectations.
type FormsConfig struct {
	TemplateObjectKey  string  `mapstructure:"template_object_key"`
	PinnedPageCount    int     `mapstructure:"pinned_page_count"`
	PinnedPageWidthPt  float64 `mapstructure:"pinned_page_width_pt"`
	PinnedPageHeightPt float64 `mapstructure:"pinned_page_height_pt"`
	DimTolerancePt     float64 `mapstructure:"dim_tolerance_pt"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the application.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Log      LogConfig      `mapstructure:"log"`
	Interest InterestConfig `mapstructure:"interest"`
	Protocol ProtocolConfig `mapstructure:"protocol"`
	Forms    FormsConfig    `mapstructure:"forms"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.  It
// returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address when kafka is enabled")
	}

	if c.Interest.StatutoryRatePercent <= 0 {
		return fmt.Errorf("config: interest.statutory_rate_percent must be positive, got %v", c.Interest.StatutoryRatePercent)
	}
	if c.Interest.BaseRatePercent < 0 {
		return fmt.Errorf("config: interest.base_rate_percent must not be negative, got %v", c.Interest.BaseRatePercent)
	}
	if c.Interest.CountyCourtRatePercent <= 0 {
		return fmt.Errorf("config: interest.county_court_rate_percent must be positive, got %v", c.Interest.CountyCourtRatePercent)
	}

	if c.Protocol.FirstChaserAfterDays < 1 {
		return fmt.Errorf("config: protocol.first_chaser_after_days must be >= 1")
	}
	if c.Protocol.FinalDemandAfterDays <= c.Protocol.FirstChaserAfterDays {
		return fmt.Errorf("config: protocol.final_demand_after_days must exceed first_chaser_after_days")
	}
	if c.Protocol.LBASuggestedAfterDays <= c.Protocol.FinalDemandAfterDays {
		return fmt.Errorf("config: protocol.lba_suggested_after_days must exceed final_demand_after_days")
	}
	if c.Protocol.ResponseWindowIndividual < 1 || c.Protocol.ResponseWindowCompany < 1 {
		return fmt.Errorf("config: protocol response windows must be >= 1 day")
	}

	if c.Forms.PinnedPageCount < 1 {
		return fmt.Errorf("config: forms.pinned_page_count must be >= 1")
	}
	if c.Forms.PinnedPageWidthPt <= 0 || c.Forms.PinnedPageHeightPt <= 0 {
		return fmt.Errorf("config: forms pinned page dimensions must be positive")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
