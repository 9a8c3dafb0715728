package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Storage  StorageConfig
	Import   ImportConfig
	Behavior BehaviorConfig
	Export   ExportConfig
	Backup   BackupConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// StorageConfig selects where the roster snapshot blob lives.
type StorageConfig struct {
	Backend string
	Key     string
	Dir     string
}

// ImportConfig tunes roster file imports.
type ImportConfig struct {
	MaxFileSizeBytes int64
	HeaderMarkers    []string
	ScriptBlock      string
	Charsets         []string
	MinNameLength    int
}

// BehaviorConfig controls the behaviour vocabulary.
type BehaviorConfig struct {
	VocabularyPath    string
	StrictVocabulary  bool
	LegacyBalanceNote string
}

// ExportConfig tunes rendered exports.
type ExportConfig struct {
	PDFFontPath string
}

// BackupConfig schedules snapshot copies to disk.
type BackupConfig struct {
	Enabled   bool
	Schedule  string
	Dir       string
	Retention time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Storage = StorageConfig{
		Backend: strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_BACKEND"))),
		Key:     v.GetString("STORAGE_KEY"),
		Dir:     v.GetString("STORAGE_DIR"),
	}

	maxImport := v.GetInt64("IMPORT_MAX_FILE_SIZE")
	if maxImport <= 0 {
		maxImport = 5 * 1024 * 1024
	}
	minName := v.GetInt("IMPORT_MIN_NAME_LENGTH")
	if minName <= 0 {
		minName = 3
	}
	cfg.Import = ImportConfig{
		MaxFileSizeBytes: maxImport,
		HeaderMarkers:    splitAndTrim(v.GetString("IMPORT_HEADER_MARKERS")),
		ScriptBlock:      v.GetString("IMPORT_SCRIPT_BLOCK"),
		Charsets:         splitAndTrim(v.GetString("IMPORT_CHARSETS")),
		MinNameLength:    minName,
	}

	cfg.Behavior = BehaviorConfig{
		VocabularyPath:    v.GetString("VOCABULARY_PATH"),
		StrictVocabulary:  v.GetBool("BEHAVIOR_STRICT_VOCABULARY"),
		LegacyBalanceNote: v.GetString("LEGACY_BALANCE_NOTE"),
	}

	cfg.Export = ExportConfig{
		PDFFontPath: v.GetString("EXPORT_PDF_FONT_PATH"),
	}

	cfg.Backup = BackupConfig{
		Enabled:   v.GetBool("BACKUP_ENABLED"),
		Schedule:  v.GetString("BACKUP_SCHEDULE"),
		Dir:       v.GetString("BACKUP_DIR"),
		Retention: parseDuration(v.GetString("BACKUP_RETENTION"), 30*24*time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "sma_roster")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 4)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("STORAGE_BACKEND", StorageFile)
	v.SetDefault("STORAGE_KEY", "school_db_v6")
	v.SetDefault("STORAGE_DIR", "./data")

	v.SetDefault("IMPORT_MAX_FILE_SIZE", 5*1024*1024)
	v.SetDefault("IMPORT_HEADER_MARKERS", "اسم")
	v.SetDefault("IMPORT_SCRIPT_BLOCK", "0600-06FF")
	v.SetDefault("IMPORT_MIN_NAME_LENGTH", 3)

	v.SetDefault("VOCABULARY_PATH", "")
	v.SetDefault("BEHAVIOR_STRICT_VOCABULARY", false)
	v.SetDefault("LEGACY_BALANCE_NOTE", "رصيد سابق")

	v.SetDefault("EXPORT_PDF_FONT_PATH", "")

	v.SetDefault("BACKUP_ENABLED", false)
	v.SetDefault("BACKUP_SCHEDULE", "@daily")
	v.SetDefault("BACKUP_DIR", "./backups")
	v.SetDefault("BACKUP_RETENTION", "720h")
}

// isMissingFile covers viper returning a plain fs error for an explicit
// SetConfigFile path that does not exist.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
