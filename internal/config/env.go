// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Core (Required)
	EnvLineChannelAccessToken = "SS_LINE_CHANNEL_ACCESS_TOKEN"
	EnvLineChannelSecret      = "SS_LINE_CHANNEL_SECRET"

	// Server
	EnvPort            = "SS_PORT"
	EnvLogLevel        = "SS_LOG_LEVEL"
	EnvLogFile         = "SS_LOG_FILE"
	EnvShutdownTimeout = "SS_SHUTDOWN_TIMEOUT"
	EnvTimezone        = "SS_TIMEZONE"

	// Data
	EnvDataDir = "SS_DATA_DIR"

	// NER collaborator service
	EnvNERURL         = "SS_NER_URL"
	EnvNERTimeout     = "SS_NER_TIMEOUT"
	EnvNERCustomWords = "SS_NER_CUSTOM_WORDS"

	// Scraper
	EnvScraperTimeout    = "SS_SCRAPER_TIMEOUT"
	EnvScraperMaxRetries = "SS_SCRAPER_MAX_RETRIES"

	// Webhook
	EnvWebhookTimeout = "SS_WEBHOOK_TIMEOUT"

	// Rate Limits
	EnvGlobalRateRPS  = "SS_GLOBAL_RATE_RPS"
	EnvUserRateBurst  = "SS_USER_RATE_BURST"
	EnvUserRateRefill = "SS_USER_RATE_REFILL"

	// R2 Snapshot Feature
	EnvR2Enabled          = "SS_R2_ENABLED"
	EnvR2AccountID        = "SS_R2_ACCOUNT_ID"
	EnvR2AccessKeyID      = "SS_R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey  = "SS_R2_SECRET_ACCESS_KEY"
	EnvR2BucketName       = "SS_R2_BUCKET_NAME"
	EnvR2SnapshotKey      = "SS_R2_SNAPSHOT_KEY"
	EnvR2LockKey          = "SS_R2_LOCK_KEY"
	EnvR2LockTTL          = "SS_R2_LOCK_TTL"
	EnvR2SnapshotInterval = "SS_R2_SNAPSHOT_INTERVAL"

	// Sentry Feature
	EnvSentryEnabled          = "SS_SENTRY_ENABLED"
	EnvSentryDSN              = "SS_SENTRY_DSN"
	EnvSentryEnvironment      = "SS_SENTRY_ENVIRONMENT"
	EnvSentryRelease          = "SS_SENTRY_RELEASE"
	EnvSentrySampleRate       = "SS_SENTRY_SAMPLE_RATE"
	EnvSentryTracesSampleRate = "SS_SENTRY_TRACES_SAMPLE_RATE"

	// Metrics Auth Feature
	EnvMetricsAuthEnabled = "SS_METRICS_AUTH_ENABLED"
	EnvMetricsUsername    = "SS_METRICS_USERNAME"
	EnvMetricsPassword    = "SS_METRICS_PASSWORD"
)
