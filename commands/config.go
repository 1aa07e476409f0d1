package commands

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"gitlab.com/gitlab-org/osz-unpacker/beatmaps"
	"gitlab.com/gitlab-org/osz-unpacker/common"
	"gitlab.com/gitlab-org/osz-unpacker/helpers/archives"
)

var (
	_ prometheus.Collector = &configAccessCollector{}
)

type configAccessCollector struct {
	loadingError prometheus.Counter
	loaded       prometheus.Counter
}

func newConfigAccessCollector() *configAccessCollector {
	return &configAccessCollector{
		loadingError: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "osz_unpacker_configuration_loading_error_total",
			Help: "Total number of times the configuration file was not loaded due to errors",
		}),
		loaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "osz_unpacker_configuration_loaded_total",
			Help: "Total number of times the configuration file was loaded",
		}),
	}
}

func (c *configAccessCollector) Describe(descs chan<- *prometheus.Desc) {
	c.loadingError.Describe(descs)
	c.loaded.Describe(descs)
}

func (c *configAccessCollector) Collect(metrics chan<- prometheus.Metric) {
	c.loadingError.Collect(metrics)
	c.loaded.Collect(metrics)
}

// configOptions is embedded by commands that read the configuration file.
// Flags left at their zero value keep the configured setting.
type configOptions struct {
	config *common.Config

	configAccessCollector *configAccessCollector

	ConfigFile  string `short:"c" long:"config" env:"OSZ_CONFIG_FILE" description:"Config file"`
	SongsDir    string `long:"songs-dir" description:"Songs library directory (default: <user data dir>/osu!/Songs)"`
	FailFast    bool   `long:"fail-fast" description:"Stop at the first member that fails to extract"`
	Concurrency int    `long:"concurrency" description:"Number of members extracted at once"`
}

func (c *configOptions) onConfigurationAccessCollector(callback func(*configAccessCollector)) {
	if c.configAccessCollector == nil {
		return
	}

	callback(c.configAccessCollector)
}

func (c *configOptions) loadConfig() error {
	if c.ConfigFile == "" {
		c.ConfigFile = common.GetDefaultConfigFile()
	}

	config, err := common.LoadConfig(c.ConfigFile)
	if err != nil {
		c.onConfigurationAccessCollector(func(m *configAccessCollector) {
			m.loadingError.Inc()
		})

		return err
	}

	if c.SongsDir != "" {
		config.SongsDir = c.SongsDir
	}
	if c.FailFast {
		config.FailFast = true
	}
	if c.Concurrency != 0 {
		config.Concurrency = c.Concurrency
	}

	// Config validation is best-effort
	if err := config.Validate(); err != nil {
		logrus.Warningf("There might be a problem with your config\n%v", err)
	}

	c.onConfigurationAccessCollector(func(m *configAccessCollector) {
		m.loaded.Inc()
	})

	c.config = config
	return nil
}

func (c *configOptions) library(opts ...archives.Option) (*beatmaps.Library, error) {
	if err := c.loadConfig(); err != nil {
		return nil, err
	}

	return beatmaps.NewLibrary(c.config, opts...)
}
