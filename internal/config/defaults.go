package config

import "time"

// ApplyDefaults fills every unset field of cfg with its production default.
// Called after unmarshalling and before validation so that a minimal config
// file (or bare environment) still yields a runnable application.
//
// The interest defaults reproduce the rates in force at calibration time:
// 8% statutory + 4.75% Bank of England base rate for commercial debts
// (a combined 12.75%), and 8% under s.69 County Courts Act 1984 otherwise.
// Operators must update base_rate_percent when the Bank rate changes.
func ApplyDefaults(cfg *Config) {
	// Server
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	// Database
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "paidup"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "paidup"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 25
	}
	if cfg.Database.MinConns == 0 {
		cfg.Database.MinConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 5 * time.Minute
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = "internal/infrastructure/database/postgres/migrations"
	}

	// Redis
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = 24 * time.Hour
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "paidup:"
	}

	// Kafka
	if cfg.Kafka.Acks == "" {
		cfg.Kafka.Acks = "one"
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = 3
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = time.Second
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}

	// MinIO
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = "paidup-assets"
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	// Interest
	if cfg.Interest.StatutoryRatePercent == 0 {
		cfg.Interest.StatutoryRatePercent = 8.0
	}
	if cfg.Interest.BaseRatePercent == 0 {
		cfg.Interest.BaseRatePercent = 4.75
	}
	if cfg.Interest.CountyCourtRatePercent == 0 {
		cfg.Interest.CountyCourtRatePercent = 8.0
	}

	// Protocol
	if cfg.Protocol.FirstChaserAfterDays == 0 {
		cfg.Protocol.FirstChaserAfterDays = 7
	}
	if cfg.Protocol.FinalDemandAfterDays == 0 {
		cfg.Protocol.FinalDemandAfterDays = 21
	}
	if cfg.Protocol.LBASuggestedAfterDays == 0 {
		cfg.Protocol.LBASuggestedAfterDays = 30
	}
	if cfg.Protocol.ResponseWindowIndividual == 0 {
		cfg.Protocol.ResponseWindowIndividual = 30
	}
	if cfg.Protocol.ResponseWindowCompany == 0 {
		cfg.Protocol.ResponseWindowCompany = 14
	}
	if cfg.Protocol.CourtFilingGraceAfterDays == 0 {
		cfg.Protocol.CourtFilingGraceAfterDays = 7
	}
	if cfg.Protocol.ChaserRecommendedOverdueBy == 0 {
		cfg.Protocol.ChaserRecommendedOverdueBy = 14
	}

	// Forms: pinned against the N1 (10.22) template, A4 portrait.
	if cfg.Forms.TemplateObjectKey == "" {
		cfg.Forms.TemplateObjectKey = "templates/form-n1-1022.pdf"
	}
	if cfg.Forms.PinnedPageCount == 0 {
		cfg.Forms.PinnedPageCount = 3
	}
	if cfg.Forms.PinnedPageWidthPt == 0 {
		cfg.Forms.PinnedPageWidthPt = 595.0
	}
	if cfg.Forms.PinnedPageHeightPt == 0 {
		cfg.Forms.PinnedPageHeightPt = 842.0
	}
	if cfg.Forms.DimTolerancePt == 0 {
		cfg.Forms.DimTolerancePt = 1.0
	}
}
