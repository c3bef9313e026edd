package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config contains all of the configuration options available to icecrypt's
// commands.
type Config struct {
	// Directory against which relative paths (e.g. the SQLite database) resolve.
	DataDir string `mapstructure:"data_dir"`

	Cipher struct {
		// ICE level. 0 selects Thin-ICE (8 rounds, 8-byte key), n > 0 uses n*16
		// rounds over an n*8 byte key.
		Strength int `mapstructure:"strength"`
		// What to do with the trailing bytes of a file that do not fill a
		// block. Options: passthrough, zero, drop
		Remainder string `mapstructure:"remainder"`
	} `mapstructure:"cipher"`

	Files struct {
		// Extension given to encrypted files.
		EncryptExtension string `mapstructure:"encrypt_extension"`
		// Extension given to decrypted files. Files with this extension are
		// encrypted when the direction is picked automatically.
		PlainExtension string `mapstructure:"plain_extension"`
		// Number of files processed concurrently.
		Workers int `mapstructure:"workers"`
	} `mapstructure:"files"`

	Keyring struct {
		// How long a scheduled key stays cached after it was last built.
		TTL time.Duration `mapstructure:"ttl"`
	} `mapstructure:"keyring"`

	Database struct {
		// Options: sqlite, postgres
		Engine string `mapstructure:"engine"`
		// SQLite database file, relative to data_dir.
		Filename string `mapstructure:"filename"`
		// Hostname of the Postgres database instance.
		Host string `mapstructure:"host"`
		// Port on host on which the Postgres instance is accepting connections.
		Port int `mapstructure:"port"`
		// Name of the database in Postgres.
		Name     string `mapstructure:"name"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		// Set to verify-full if the Postgres instance supports SSL.
		SSLMode string `mapstructure:"sslmode"`
	} `mapstructure:"database"`

	Logging struct {
		// Full path to file to which logs will be written. Blank will write to stderr.
		LogFilePath string `mapstructure:"log_file_path"`
		// Minimum level of a log required to be written. Options: debug, info, warn, error
		LogLevel string `mapstructure:"log_level"`
		// Include the file and line number of the log call.
		IncludeCaller bool `mapstructure:"include_caller"`
	} `mapstructure:"logging"`
}

const envVarPrefix = "ICECRYPT"

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", ".")
	v.SetDefault("cipher.strength", 0)
	v.SetDefault("cipher.remainder", "passthrough")
	v.SetDefault("files.encrypt_extension", ".ctx")
	v.SetDefault("files.plain_extension", ".txt")
	v.SetDefault("files.workers", 4)
	v.SetDefault("keyring.ttl", "10m")
	v.SetDefault("database.engine", "sqlite")
	v.SetDefault("database.filename", "icecrypt.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "icecrypt")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("logging.log_level", "info")
}

// LoadConfig reads config.yaml from configPath (if present) on top of the
// defaults. Any option can be overridden through the environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.AddConfigPath(configPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	// This allows us to set nested yaml config options through environment
	// variables. For example, cipher.strength can be set using: <envVarPrefix>_CIPHER_STRENGTH
	for _, k := range v.AllKeys() {
		envVar := strings.ReplaceAll(strings.ToUpper(k), ".", "_")
		if err := v.BindEnv(k, envVarPrefix+"_"+envVar); err != nil {
			return nil, fmt.Errorf("error binding %s to %s: %w", k, envVarPrefix+"_"+envVar, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config object: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the options that cannot be checked by their consumers.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Engine) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database engine: %q", c.Database.Engine)
	}
	if c.Files.Workers < 1 {
		return fmt.Errorf("files.workers must be at least 1, got %d", c.Files.Workers)
	}
	for _, ext := range []string{c.Files.EncryptExtension, c.Files.PlainExtension} {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("invalid file extension %q", ext)
		}
	}
	if strings.EqualFold(c.Files.EncryptExtension, c.Files.PlainExtension) {
		return errors.New("files.encrypt_extension and files.plain_extension must differ")
	}
	return nil
}

const databaseURITemplate = "host=%s port=%d dbname=%s user=%s password=%s sslmode=%s"

// DatabaseURL returns a Postgres connection string generated from the provided config values.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		databaseURITemplate,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.Username,
		c.Database.Password,
		c.Database.SSLMode,
	)
}

// QualifiedPath returns path unchanged if it is absolute, otherwise joined to DataDir.
func (c *Config) QualifiedPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.DataDir, path)
}
