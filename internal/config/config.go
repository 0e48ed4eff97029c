package config

// Config holds all application configuration.
// It is loaded once at startup and treated as immutable afterwards.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage"  validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url"                       validate:"required,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"            validate:"gt=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"            validate:"gte=0,ltefield=MaxOpenConns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gt=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	// ClockSkewSeconds is the leeway applied to exp/iat checks. Zero means
	// expiry is enforced exactly.
	ClockSkewSeconds   int     `mapstructure:"clock_skew_seconds"    validate:"gte=0,lte=300"`
	BcryptCost         int     `mapstructure:"bcrypt_cost"           validate:"gte=4,lte=31"`
	LoginRatePerSecond float64 `mapstructure:"login_rate_per_second" validate:"gt=0"`
	LoginBurst         int     `mapstructure:"login_burst"           validate:"gt=0"`
}

// StorageConfig selects and configures the object store for uploaded files.
type StorageConfig struct {
	Backend        string `mapstructure:"backend"          validate:"required,oneof=local s3"`
	LocalRoot      string `mapstructure:"local_root"       validate:"required_if=Backend local"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" validate:"gt=0"`

	S3Bucket          string `mapstructure:"s3_bucket"            validate:"required_if=Backend s3"`
	S3Region          string `mapstructure:"s3_region"            validate:"required_if=Backend s3"`
	S3Endpoint        string `mapstructure:"s3_endpoint"          validate:"omitempty,url"`
	S3AccessKeyID     string `mapstructure:"s3_access_key_id"`
	S3SecretAccessKey string `mapstructure:"s3_secret_access_key" validate:"required_with=S3AccessKeyID"`
	S3UsePathStyle    bool   `mapstructure:"s3_use_path_style"`
}
