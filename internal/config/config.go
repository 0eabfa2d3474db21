// Package config loads application configuration and bootstraps logging.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store         StoreConfig    `yaml:"store" mapstructure:"store"`
	Congress      CongressConfig `yaml:"congress" mapstructure:"congress"`
	FEC           FECConfig      `yaml:"fec" mapstructure:"fec"`
	Voteview      VoteviewConfig `yaml:"voteview" mapstructure:"voteview"`
	Bills         BillsConfig    `yaml:"bills" mapstructure:"bills"`
	Officeholders string         `yaml:"officeholders" mapstructure:"officeholders"`
	Server        ServerConfig   `yaml:"server" mapstructure:"server"`
	Log           LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the Postgres backend.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// CongressConfig configures the Congress.gov member API client and the
// congress range the pipeline covers.
type CongressConfig struct {
	APIKey         string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	StartCongress  int    `yaml:"start_congress" mapstructure:"start_congress"`
	EndCongress    int    `yaml:"end_congress" mapstructure:"end_congress"`
	PageSize       int    `yaml:"page_size" mapstructure:"page_size"`
	PageDelayMS    int    `yaml:"page_delay_ms" mapstructure:"page_delay_ms"`
	RetryDelaySecs int    `yaml:"retry_delay_secs" mapstructure:"retry_delay_secs"`
}

// PageDelay returns the fixed delay between member API pages.
func (c CongressConfig) PageDelay() time.Duration {
	return time.Duration(c.PageDelayMS) * time.Millisecond
}

// RetryDelay returns the fixed delay before the single page retry.
func (c CongressConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySecs) * time.Second
}

// FECConfig configures the FEC bulk-data stages.
type FECConfig struct {
	DataDir   string   `yaml:"data_dir" mapstructure:"data_dir"`
	IndivURLs []string `yaml:"indiv_urls" mapstructure:"indiv_urls"`
	MinAmount float64  `yaml:"min_amount" mapstructure:"min_amount"`
}

// VoteviewConfig configures the Voteview roll-call stage.
type VoteviewConfig struct {
	DataDir    string `yaml:"data_dir" mapstructure:"data_dir"`
	MemberFile string `yaml:"member_file" mapstructure:"member_file"`
}

// BillsConfig configures the Congress.gov bill-status stage.
type BillsConfig struct {
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
}

// ServerConfig configures the query API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// defaultIndivURLs lists the FEC individual-contribution bulk files, one per
// two-year cycle.
func defaultIndivURLs() []string {
	return []string{
		"https://www.fec.gov/files/bulk-downloads/2004/indiv04.zip",
		"https://www.fec.gov/files/bulk-downloads/2006/indiv06.zip",
		"https://www.fec.gov/files/bulk-downloads/2008/indiv08.zip",
		"https://www.fec.gov/files/bulk-downloads/2010/indiv10.zip",
		"https://www.fec.gov/files/bulk-downloads/2012/indiv12.zip",
		"https://www.fec.gov/files/bulk-downloads/2014/indiv14.zip",
		"https://www.fec.gov/files/bulk-downloads/2016/indiv16.zip",
		"https://www.fec.gov/files/bulk-downloads/2018/indiv18.zip",
		"https://www.fec.gov/files/bulk-downloads/2020/indiv20.zip",
		"https://www.fec.gov/files/bulk-downloads/2022/indiv22.zip",
		"https://www.fec.gov/files/bulk-downloads/2024/indiv24.zip",
		"https://www.fec.gov/files/bulk-downloads/2026/indiv26.zip",
	}
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PAPERTRAIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Empty defaults for secrets so AutomaticEnv can see the keys.
	v.SetDefault("store.database_url", "")
	v.SetDefault("congress.api_key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("congress.base_url", "https://api.congress.gov/v3")
	v.SetDefault("congress.start_congress", 108)
	v.SetDefault("congress.end_congress", 119)
	v.SetDefault("congress.page_size", 250)
	v.SetDefault("congress.page_delay_ms", 300)
	v.SetDefault("congress.retry_delay_secs", 10)
	v.SetDefault("fec.data_dir", "data/fec")
	v.SetDefault("fec.indiv_urls", defaultIndivURLs())
	v.SetDefault("fec.min_amount", 2000.0)
	v.SetDefault("voteview.data_dir", "data/voteview")
	v.SetDefault("voteview.member_file", "data/voteview/HSall_members.json")
	v.SetDefault("bills.data_dir", "data/bills")
	v.SetDefault("officeholders", "officeholders.yaml")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
