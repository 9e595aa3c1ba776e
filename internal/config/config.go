package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/straye-as/attendance-api/internal/secrets"
	"go.uber.org/zap"
)

// DefaultAdminPassword is the demo password accepted when nothing else is configured
const DefaultAdminPassword = "admin123"

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Attendance AttendanceConfig
	Auth       AuthConfig
	Jobs       JobsConfig
	Secrets    SecretsConfig
	Logging    LoggingConfig
	Server     ServerConfig
	CORS       CORSConfig
	Security   SecurityConfig
	RateLimit  RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
	// Timezone is the IANA zone that decides what "today" means ("Local" uses the host zone)
	Timezone string
}

// DatabaseConfig describes the process-local SQLite store.
// The database lives in memory and is discarded when the process exits.
type DatabaseConfig struct {
	Name         string
	MaxOpenConns int
	MaxIdleConns int
}

// AttendanceConfig holds tunables of the attendance store
type AttendanceConfig struct {
	// NotificationLimit caps the notification log; older entries are dropped
	NotificationLimit int
	// DailyCodeLength is the number of characters in a generated daily code
	DailyCodeLength int
	// SeedEnabled loads the sample roster at startup
	SeedEnabled bool
	// SeedFile overrides the embedded sample roster with a YAML file
	SeedFile string
}

// AuthConfig holds login and session configuration
type AuthConfig struct {
	// AdminPassword is the plain admin password (resolved from secrets when enabled)
	AdminPassword string
	// AdminPasswordHash is a bcrypt hash; takes precedence over AdminPassword
	AdminPasswordHash string
	// TokenSecret signs session tokens
	TokenSecret string
	// TokenTTL is the session lifetime in minutes
	TokenTTL int
	Issuer   string
}

// JobsConfig holds background job schedules (cron expressions with seconds field)
type JobsConfig struct {
	CodeRotationEnabled bool
	CodeRotationCron    string
	SessionSweepCron    string
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	// "auto" uses environment in development, vault in staging/production
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins for CORS requests
	// Use "*" to allow all origins (not recommended for production)
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	// MaxAge is the max age (in seconds) for preflight cache
	MaxAge int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	XSSProtection         string
	ReferrerPolicy        string
	PermissionsPolicy     string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerMinute is the default rate limit for unauthenticated requests (per IP)
	RequestsPerMinute int
	// RequestsPerMinuteAuth is the rate limit for authenticated requests (per user)
	RequestsPerMinuteAuth int
	// LoginAttemptsPerMinute limits login attempts per IP
	LoginAttemptsPerMinute int
	WhitelistIPs           []string
	WhitelistPaths         []string
}

// DSN returns the SQLite connection string for the shared in-memory database
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", d.Name)
}

// Location resolves the configured timezone
func (a *AppConfig) Location() (*time.Location, error) {
	if a.Timezone == "" || strings.EqualFold(a.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", a.Timezone, err)
	}
	return loc, nil
}

// TokenTTLDuration returns the session lifetime as duration
func (a *AuthConfig) TokenTTLDuration() time.Duration {
	return time.Duration(a.TokenTTL) * time.Minute
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// IsDevelopment reports whether the app runs in a local/development environment
func (a *AppConfig) IsDevelopment() bool {
	switch a.Environment {
	case "development", "local", "":
		return true
	}
	return false
}

// Load loads configuration from file and environment variables
// This is a basic load that doesn't fetch secrets from vault
// Use LoadWithSecrets for full secret resolution
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.AdminPassword == "" {
		cfg.Auth.AdminPassword = v.GetString("ADMIN_PASSWORD")
	}
	if cfg.Auth.TokenSecret == "" {
		cfg.Auth.TokenSecret = v.GetString("TOKEN_SECRET")
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that would otherwise fail late at runtime
func (c *Config) Validate() error {
	if _, err := c.App.Location(); err != nil {
		return err
	}
	if c.Attendance.NotificationLimit < 1 {
		return fmt.Errorf("attendance.notificationLimit must be positive, got %d", c.Attendance.NotificationLimit)
	}
	if c.Attendance.DailyCodeLength < 4 || c.Attendance.DailyCodeLength > 32 {
		return fmt.Errorf("attendance.dailyCodeLength must be between 4 and 32, got %d", c.Attendance.DailyCodeLength)
	}
	if c.Auth.TokenTTL < 1 {
		return fmt.Errorf("auth.tokenTTL must be positive, got %d", c.Auth.TokenTTL)
	}
	return nil
}

// LoadWithSecrets loads configuration and resolves secrets from the configured source.
// In development, secrets come from env vars. In staging/production with
// USE_AZURE_KEY_VAULT=true, the admin password and token signing key come from Azure Key Vault.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		applySecretDefaults(cfg, logger)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		applySecretDefaults(cfg, logger)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider (USE_AZURE_KEY_VAULT=true requires valid vault): %w", err)
	}

	if err := ResolveSecrets(ctx, cfg, provider); err != nil {
		return nil, err
	}

	logger.Info("Secrets loaded from vault successfully",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)
	applySecretDefaults(cfg, logger)
	return cfg, nil
}

// SecretGetter is the part of the secrets provider used by config resolution
type SecretGetter interface {
	GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error)
}

// ResolveSecrets fills the auth secrets from the given provider.
// The admin password is optional; the token signing key is required.
func ResolveSecrets(ctx context.Context, cfg *Config, provider SecretGetter) error {
	if password, err := provider.GetSecretOrEnv(ctx, "admin-password", "ADMIN_PASSWORD"); err == nil && password != "" {
		cfg.Auth.AdminPassword = password
	}
	if hash, err := provider.GetSecretOrEnv(ctx, "admin-password-hash", "ADMIN_PASSWORD_HASH"); err == nil && hash != "" {
		cfg.Auth.AdminPasswordHash = hash
	}

	key, err := provider.GetSecretOrEnv(ctx, "token-signing-key", "TOKEN_SECRET")
	if err != nil {
		return fmt.Errorf("failed to resolve token signing key: %w", err)
	}
	cfg.Auth.TokenSecret = key
	return nil
}

// applySecretDefaults fills development fallbacks for unset secrets
func applySecretDefaults(cfg *Config, logger *zap.Logger) {
	if cfg.Auth.AdminPassword == "" && cfg.Auth.AdminPasswordHash == "" {
		cfg.Auth.AdminPassword = DefaultAdminPassword
		if !cfg.App.IsDevelopment() {
			logger.Warn("Admin password not configured, falling back to the demo password",
				zap.String("environment", cfg.App.Environment),
			)
		}
	}
	if cfg.Auth.TokenSecret == "" {
		cfg.Auth.TokenSecret = "attendance-dev-signing-key"
		if !cfg.App.IsDevelopment() {
			logger.Warn("TOKEN_SECRET not configured, using development signing key",
				zap.String("environment", cfg.App.Environment),
			)
		}
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Attendance API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.timezone", "Local")

	v.SetDefault("database.name", "attendance")
	v.SetDefault("database.maxOpenConns", 1)
	v.SetDefault("database.maxIdleConns", 1)

	v.SetDefault("attendance.notificationLimit", 50)
	v.SetDefault("attendance.dailyCodeLength", 6)
	v.SetDefault("attendance.seedEnabled", true)
	v.SetDefault("attendance.seedFile", "")

	v.SetDefault("auth.tokenTTL", 720) // 12 hours
	v.SetDefault("auth.issuer", "attendance-api")

	// Cron expressions include a seconds field
	v.SetDefault("jobs.codeRotationEnabled", false)
	v.SetDefault("jobs.codeRotationCron", "0 0 0 * * *")
	v.SetDefault("jobs.sessionSweepCron", "0 */15 * * * *")

	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID", "Content-Disposition"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.xssProtection", "1; mode=block")
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "microphone=(), camera=()")

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 120)
	v.SetDefault("rateLimit.loginAttemptsPerMinute", 10)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready"})
}
