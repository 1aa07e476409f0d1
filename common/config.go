package common

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	"gitlab.com/gitlab-org/osz-unpacker/helpers/homedir"
)

const (
	EnvPrefix          = "OSZ"
	ConfigFileName     = "config.toml"
	DefaultConcurrency = 1
)

// Config holds the settings shared by all commands. Values come from the
// TOML file first and are then overridden by OSZ_* environment variables.
type Config struct {
	// DataDir replaces the per-user data directory the songs library
	// lives under.
	DataDir string `toml:"data_dir,omitempty" envconfig:"DATA_DIR"`
	// SongsDir replaces the songs library location entirely.
	SongsDir string `toml:"songs_dir,omitempty" envconfig:"SONGS_DIR"`

	FailFast    bool `toml:"fail_fast,omitempty" envconfig:"FAIL_FAST"`
	Concurrency int  `toml:"concurrency,omitempty" envconfig:"CONCURRENCY"`

	// MetricsTextfile is where extraction metrics are written in the
	// Prometheus text format. Empty disables it.
	MetricsTextfile string `toml:"metrics_textfile,omitempty" envconfig:"METRICS_TEXTFILE"`

	ModTime time.Time `toml:"-" ignored:"true"`
	Loaded  bool      `toml:"-" ignored:"true"`
}

func NewConfig() *Config {
	return &Config{
		Concurrency: DefaultConcurrency,
	}
}

// LoadConfig decodes configFile into c. A missing file leaves c untouched.
func (c *Config) LoadConfig(configFile string) error {
	info, err := os.Stat(configFile)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}

	if _, err = toml.DecodeFile(configFile, c); err != nil {
		return fmt.Errorf("decoding %s: %w", configFile, err)
	}

	c.ModTime = info.ModTime()
	c.Loaded = true
	return nil
}

// ApplyEnv overrides c with the OSZ_* environment variables that are set.
func (c *Config) ApplyEnv() error {
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("reading %s_* environment: %w", EnvPrefix, err)
	}

	return nil
}

// Validate reports settings that are set but unusable.
func (c *Config) Validate() error {
	var errs *multierror.Error

	if c.Concurrency < 0 {
		errs = multierror.Append(errs, fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency))
	}

	for key, dir := range map[string]string{"data_dir": c.DataDir, "songs_dir": c.SongsDir} {
		if dir != "" && !filepath.IsAbs(dir) {
			errs = multierror.Append(errs, fmt.Errorf("%s must be an absolute path, got %q", key, dir))
		}
	}

	return errs.ErrorOrNil()
}

func (c *Config) GetConcurrency() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return DefaultConcurrency
}

// GetDataDir returns the configured data directory or the per-user one.
func (c *Config) GetDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}

	return homedir.New().DataLocalDir()
}

// GetDefaultConfigFile returns config.toml inside the osz-unpacker
// directory of the per-user data directory.
func GetDefaultConfigFile() string {
	dir, err := homedir.New().DataLocalDir()
	if err != nil {
		logrus.WithError(err).Debugln("Falling back to the current directory for the config file")
		return ConfigFileName
	}

	return filepath.Join(dir, NAME, ConfigFileName)
}

// LoadConfig reads configFile and applies the environment on top of it.
func LoadConfig(configFile string) (*Config, error) {
	c := NewConfig()
	if err := c.LoadConfig(configFile); err != nil {
		return nil, err
	}

	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"file":   configFile,
		"loaded": c.Loaded,
	}).Debugln("Configuration loaded")

	return c, nil
}
