package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"mediabank/internal/constants"
	"mediabank/internal/logger"
)

// AdminConfig holds the configured singleton admin identity.
// The admin is never stored in the accounts table.
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// TokenConfig holds session token settings.
type TokenConfig struct {
	SigningKey string `yaml:"signing_key"`
	TTLHours   int    `yaml:"ttl_hours"`
}

// UploadConfig holds upload limits.
type UploadConfig struct {
	MaxFileBytes     int64 `yaml:"max_file_bytes"`
	MaxFilesPerBatch int   `yaml:"max_files_per_batch"`
}

// Config holds all application configuration.
type Config struct {
	Port             int          `yaml:"port"`
	StorageDirectory string       `yaml:"storage_directory"`
	LogLevel         string       `yaml:"log_level"`
	Admin            AdminConfig  `yaml:"admin"`
	Token            TokenConfig  `yaml:"token"`
	Upload           UploadConfig `yaml:"upload"`
}

// ApplyDefaults fills zero-valued fields with development defaults.
// The admin credentials and signing key defaults are for development only.
func (cfg *Config) ApplyDefaults() {
	if cfg.Port == 0 {
		cfg.Port = constants.DefaultPort
	}
	if cfg.StorageDirectory == "" {
		cfg.StorageDirectory = constants.DefaultStorageDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = constants.DefaultLogLevel
	}
	if cfg.Admin.Username == "" {
		cfg.Admin.Username = constants.DefaultAdminUsername
	}
	if cfg.Admin.Password == "" {
		cfg.Admin.Password = constants.DefaultAdminPassword
	}
	if cfg.Token.SigningKey == "" {
		cfg.Token.SigningKey = constants.DefaultSigningKey
	}
	if cfg.Token.TTLHours == 0 {
		cfg.Token.TTLHours = constants.DefaultTokenTTLHours
	}
	if cfg.Upload.MaxFileBytes == 0 {
		cfg.Upload.MaxFileBytes = constants.DefaultMaxFileBytes
	}
	if cfg.Upload.MaxFilesPerBatch == 0 {
		cfg.Upload.MaxFilesPerBatch = constants.DefaultMaxFilesPerBatch
	}
}

// ApplyEnvOverrides replaces config values with environment variables when
// set. Environment wins over the config file so deployments can inject
// secrets without editing YAML on disk.
func (cfg *Config) ApplyEnvOverrides() {
	if v := os.Getenv("MEDIABANK_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("MEDIABANK_STORAGE"); v != "" {
		cfg.StorageDirectory = v
	}
	if v := os.Getenv("MEDIABANK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ADMIN_USERNAME"); v != "" {
		cfg.Admin.Username = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.Admin.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Token.SigningKey = v
	}
}

// Validate checks that all configurable values are within acceptable ranges.
func (cfg *Config) Validate() error {
	var errs []string

	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}
	if cfg.StorageDirectory == "" {
		errs = append(errs, "storage_directory must be set")
	}
	if cfg.Token.TTLHours < 1 {
		errs = append(errs, "token.ttl_hours must be >= 1")
	}
	if cfg.Token.SigningKey == "" {
		errs = append(errs, "token.signing_key must be set")
	}
	if cfg.Admin.Username == "" {
		errs = append(errs, "admin.username must be set")
	}
	if cfg.Upload.MaxFileBytes < 1 {
		errs = append(errs, "upload.max_file_bytes must be >= 1")
	}
	if cfg.Upload.MaxFilesPerBatch < 1 {
		errs = append(errs, "upload.max_files_per_batch must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// LogEffectiveValues logs all effective configuration values at startup.
// Secrets are reported only as set/unset.
func (cfg *Config) LogEffectiveValues(log *logger.Logger) {
	log.Info("config: port=%d", cfg.Port)
	log.Info("config: storage_directory=%s", cfg.StorageDirectory)
	log.Info("config: log_level=%s", cfg.LogLevel)
	log.Info("config: admin.username=%s", cfg.Admin.Username)
	log.Info("config: admin.password=%s", secretStatus(cfg.Admin.Password, constants.DefaultAdminPassword))
	log.Info("config: token.signing_key=%s", secretStatus(cfg.Token.SigningKey, constants.DefaultSigningKey))
	log.Info("config: token.ttl_hours=%d", cfg.Token.TTLHours)
	log.Info("config: upload.max_file_bytes=%d", cfg.Upload.MaxFileBytes)
	log.Info("config: upload.max_files_per_batch=%d", cfg.Upload.MaxFilesPerBatch)
}

func secretStatus(value, devDefault string) string {
	if value == devDefault {
		return "(development default)"
	}
	return "(set)"
}

// DatabasePath returns the SQLite database path under the storage directory.
func (cfg *Config) DatabasePath() string {
	return filepath.Join(cfg.StorageDirectory, constants.DatabaseFile)
}

// UploadsPath returns the file store root under the storage directory.
func (cfg *Config) UploadsPath() string {
	return filepath.Join(cfg.StorageDirectory, constants.UploadsDir)
}

// LogsPath returns the log directory under the storage directory.
func (cfg *Config) LogsPath() string {
	return filepath.Join(cfg.StorageDirectory, constants.LogsDir)
}

func GetConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, constants.ConfigDir)
}

func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), constants.ConfigFile)
}

// LoadConfig reads the config file, creating it with defaults on first run,
// then layers environment overrides and validates the result.
func LoadConfig() (*Config, error) {
	return loadConfigFrom(GetConfigPath())
}

func loadConfigFrom(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		cfg.ApplyDefaults()
		if err := saveConfigTo(path, cfg); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		cfg.ApplyDefaults()
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes the config to the default path.
func SaveConfig(cfg *Config) error {
	return saveConfigTo(GetConfigPath(), cfg)
}

func saveConfigTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, constants.FilePermissions)
}
