package config

// Backend modes accepted by BackendConfig.Mode.
const (
	BackendMock   = "mock"
	BackendRemote = "remote"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Backend  BackendConfig  `mapstructure:"backend" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Task     TaskConfig     `mapstructure:"task"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port               int      `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel           string   `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	// PublicURL is the base URL embedded in confirmation and recovery links.
	PublicURL string `mapstructure:"public_url" validate:"required,url"`
}

// BackendConfig selects which data backend serves the application store.
type BackendConfig struct {
	Mode string `mapstructure:"mode" validate:"required,oneof=mock remote"`
	// StateFile is the SQLite file holding the persisted mock state.
	// An empty value disables local persistence.
	StateFile string `mapstructure:"state_file"`
	StateKey  string `mapstructure:"state_key" validate:"required"`
}

// DatabaseConfig contains all database-related configuration settings.
// URL is only required when the remote backend is selected.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lt=44640"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0,lt=131040"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost" validate:"required,gte=4,lte=31"`
	RequireEmailConfirmation    bool   `mapstructure:"require_email_confirmation"`
	VerificationLifetimeMinutes int    `mapstructure:"verification_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains all LLM integration related settings.
// An empty GeminiAPIKey leaves card generation unconfigured rather than
// failing startup.
type LLMConfig struct {
	GeminiAPIKey    string   `mapstructure:"gemini_api_key"`
	DefaultModel    string   `mapstructure:"default_model" validate:"required"`
	AllowedModels   []string `mapstructure:"allowed_models" validate:"required,min=1,dive,required"`
	MaxOutputTokens int      `mapstructure:"max_output_tokens" validate:"required,gt=0"`

	// GeminiBaseURL overrides the provider endpoint; empty uses the SDK default.
	GeminiBaseURL string `mapstructure:"gemini_base_url" validate:"omitempty,url"`
}

// TaskConfig sizes the background runner that delivers verification email.
type TaskConfig struct {
	WorkerCount        int `mapstructure:"worker_count" validate:"gte=0"`
	QueueSize          int `mapstructure:"queue_size" validate:"gte=0"`
	TaskTimeoutSeconds int `mapstructure:"task_timeout_seconds" validate:"gte=0"`
}
