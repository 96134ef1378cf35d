package resources

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

const (
	DeleteScopeAny   = "any"
	DeleteScopeOwner = "owner"
)

type Config struct {
	Name    string
	Version string
	Env     string

	LogLevel string

	HTTPHost  string
	HTTPPort  string
	DebugPort string

	DBUser        string
	DBPassword    string
	DBHost        string
	DBPort        string
	DBName        string
	DBAutoMigrate bool

	OTelEnabled  bool
	OTelEndpoint string

	AuthSigningMethod string
	AuthSecret        string
	AuthPublicKeyFile string
	AuthIssuer        string
	AuthAudience      string

	GeminiAPIKey string
	GeminiModel  string

	CORSOrigins []string

	DefaultTimezone        string
	MaxPageSize            int
	ClassDeleteScope       string
	RecheckOverlapOnUpdate bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "focus-hub")
	v.SetDefault("APP_VERSION", "1.0")
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", "5000")
	v.SetDefault("DEBUG_PORT", "6060")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "focushub")
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_ENDPOINT", "localhost:4317")
	v.SetDefault("AUTH_SIGNING_METHOD", "RS256")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173,https://focus-hub-63922.web.app")
	v.SetDefault("SCHEDULE_DEFAULT_TIMEZONE", "Asia/Dhaka")
	v.SetDefault("SCHEDULE_MAX_PAGE_SIZE", 100)
	v.SetDefault("CLASS_DELETE_SCOPE", DeleteScopeAny)
	v.SetDefault("SCHEDULE_RECHECK_OVERLAP_ON_UPDATE", false)
}

// LoadConfig resolves defaults, then an optional .env file, then the process
// environment.
func LoadConfig(v *viper.Viper, envFile string) (*Config, error) {
	setDefaults(v)

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")

		err := v.ReadInConfig()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %s: %w", envFile, err)
		}
	}

	v.AutomaticEnv()

	cfg := &Config{
		Name:                   v.GetString("APP_NAME"),
		Version:                v.GetString("APP_VERSION"),
		Env:                    v.GetString("APP_ENV"),
		LogLevel:               v.GetString("LOG_LEVEL"),
		HTTPHost:               v.GetString("HTTP_HOST"),
		HTTPPort:               v.GetString("HTTP_PORT"),
		DebugPort:              v.GetString("DEBUG_PORT"),
		DBUser:                 v.GetString("DB_USER"),
		DBPassword:             v.GetString("DB_PASSWORD"),
		DBHost:                 v.GetString("DB_HOST"),
		DBPort:                 v.GetString("DB_PORT"),
		DBName:                 v.GetString("DB_NAME"),
		DBAutoMigrate:          v.GetBool("DB_AUTO_MIGRATE"),
		OTelEnabled:            v.GetBool("OTEL_ENABLED"),
		OTelEndpoint:           v.GetString("OTEL_ENDPOINT"),
		AuthSigningMethod:      strings.ToUpper(v.GetString("AUTH_SIGNING_METHOD")),
		AuthSecret:             v.GetString("AUTH_SECRET"),
		AuthPublicKeyFile:      v.GetString("AUTH_PUBLIC_KEY_FILE"),
		AuthIssuer:             v.GetString("AUTH_ISSUER"),
		AuthAudience:           v.GetString("AUTH_AUDIENCE"),
		GeminiAPIKey:           v.GetString("GEMINI_API_KEY"),
		GeminiModel:            v.GetString("GEMINI_MODEL"),
		CORSOrigins:            splitList(v.GetString("CORS_ORIGINS")),
		DefaultTimezone:        v.GetString("SCHEDULE_DEFAULT_TIMEZONE"),
		MaxPageSize:            v.GetInt("SCHEDULE_MAX_PAGE_SIZE"),
		ClassDeleteScope:       strings.ToLower(v.GetString("CLASS_DELETE_SCOPE")),
		RecheckOverlapOnUpdate: v.GetBool("SCHEDULE_RECHECK_OVERLAP_ON_UPDATE"),
	}

	// Firebase ID tokens are issued for the project and addressed to it.
	if project := v.GetString("FIREBASE_PROJECT_ID"); project != "" {
		if cfg.AuthIssuer == "" {
			cfg.AuthIssuer = "https://securetoken.google.com/" + project
		}
		if cfg.AuthAudience == "" {
			cfg.AuthAudience = project
		}
	}

	err := cfg.validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	switch c.ClassDeleteScope {
	case DeleteScopeAny, DeleteScopeOwner:
	default:
		errs = append(errs, fmt.Errorf("CLASS_DELETE_SCOPE must be %q or %q, got %q", DeleteScopeAny, DeleteScopeOwner, c.ClassDeleteScope))
	}

	if c.MaxPageSize <= 0 {
		errs = append(errs, fmt.Errorf("SCHEDULE_MAX_PAGE_SIZE must be positive, got %d", c.MaxPageSize))
	}

	if c.DefaultTimezone == "" {
		errs = append(errs, errors.New("SCHEDULE_DEFAULT_TIMEZONE is required"))
	}

	return errors.Join(errs...)
}

func (c *Config) DatabaseURL() string {
	//nolint:nosprintfhostport
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func splitList(value string) []string {
	var items []string

	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}

	return items
}
