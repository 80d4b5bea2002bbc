package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

const configFileName = "fget"

// Built-in defaults, overridable by the config file, overridable by flags.
const (
	maxConcurrentFetches = 3
	maxRedirects         = 10
	dialTimeout          = 30 * time.Second
	headerTimeout        = 30 * time.Second
	userAgent            = "fget/1.0"
	defaultCharset       = "utf-8"
)

// flagConfig stores the parsed values from the cli flags.
type flagConfig struct {
	maxConcurrentFetches *int
	outputDir            *string
	charset              *string
	userAgent            *string
	plain                *bool
	text                 *bool
	debug                *bool
}

// Config holds the configuration options for the application.
type Config struct {
	Urls                 []string
	MaxConcurrentFetches int           `yaml:"maxConcurrentFetches,omitempty"`
	HTTP                 *HTTPConfig   `yaml:"http,omitempty"`
	Output               *OutputConfig `yaml:"output,omitempty"`

	// Flag-only options.
	Plain bool
	Text  bool
	Debug bool
}

// HTTPConfig holds transport options.
type HTTPConfig struct {
	DialTimeout   time.Duration     `yaml:"dialTimeout,omitempty"`
	HeaderTimeout time.Duration     `yaml:"headerTimeout,omitempty"`
	MaxRedirects  int               `yaml:"maxRedirects,omitempty"`
	UserAgent     string            `yaml:"userAgent,omitempty"`
	Headers       map[string]string `yaml:"headers,omitempty"`
}

// OutputConfig controls what happens to fetched bodies.
type OutputConfig struct {
	Dir     string `yaml:"dir,omitempty"`
	Charset string `yaml:"charset,omitempty"`
}

// GetConfig reads the configuration file and returns a Config struct.
// If the configuration file does not exist, it uses default configuration
// but STILL applies CLI flags.
func GetConfig() (*Config, error) {
	configFilePath := filepath.Join(xdg.ConfigHome, configFileName)
	defaults := DefaultConfig()

	var cfg Config

	b, err := os.ReadFile(configFilePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if len(b) > 0 {
		err = yaml.Unmarshal(b, &cfg)
		if err != nil {
			return nil, err
		}
	}

	httpCfg := zeroOr(cfg.HTTP, defaults.HTTP)
	outputCfg := zeroOr(cfg.Output, defaults.Output)

	conf := Config{
		MaxConcurrentFetches: zeroOr(cfg.MaxConcurrentFetches, defaults.MaxConcurrentFetches),
		HTTP: &HTTPConfig{
			DialTimeout:   zeroOr(httpCfg.DialTimeout, defaults.HTTP.DialTimeout),
			HeaderTimeout: zeroOr(httpCfg.HeaderTimeout, defaults.HTTP.HeaderTimeout),
			MaxRedirects:  zeroOr(httpCfg.MaxRedirects, defaults.HTTP.MaxRedirects),
			UserAgent:     zeroOr(httpCfg.UserAgent, defaults.HTTP.UserAgent),
			Headers:       httpCfg.Headers,
		},
		Output: &OutputConfig{
			Dir:     zeroOr(outputCfg.Dir, defaults.Output.Dir),
			Charset: zeroOr(outputCfg.Charset, defaults.Output.Charset),
		},
	}

	conf.applyFlagsToConfig()

	if err := conf.validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentFetches: maxConcurrentFetches,
		HTTP: &HTTPConfig{
			DialTimeout:   dialTimeout,
			HeaderTimeout: headerTimeout,
			MaxRedirects:  maxRedirects,
			UserAgent:     userAgent,
		},
		Output: &OutputConfig{
			Dir:     defaultOutputDir(),
			Charset: defaultCharset,
		},
	}
}

func defaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, "Downloads")
}

// zeroOr returns def if v is the zero value for its type.
func zeroOr[T any](v, def T) T {
	if reflect.ValueOf(v).IsZero() {
		return def
	}

	return v
}

// applyFlagsToConfig takes the value of the cli flags and plugs them into the config.
func (c *Config) applyFlagsToConfig() {
	fc := flagConfig{
		maxConcurrentFetches: flag.Int("mcf", c.MaxConcurrentFetches, "max number of fetches that run together"),
		outputDir:            flag.String("o", c.Output.Dir, "directory fetched files are written to"),
		charset:              flag.String("charset", c.Output.Charset, "charset used when decoding a body as text"),
		userAgent:            flag.String("ua", c.HTTP.UserAgent, "User-Agent header sent with every request"),
		plain:                flag.Bool("plain", false, "no TUI; fetch sequentially and write the body to stdout"),
		text:                 flag.Bool("text", false, "decode the body as text before writing (plain mode)"),
		debug:                flag.Bool("debug", false, "enable debug logging"),
	}

	flag.Parse()

	c.Urls = flag.Args()
	c.MaxConcurrentFetches = *fc.maxConcurrentFetches
	c.Output.Dir = *fc.outputDir
	c.Output.Charset = *fc.charset
	c.HTTP.UserAgent = *fc.userAgent
	c.Plain = *fc.plain
	c.Text = *fc.text
	c.Debug = *fc.debug
}

func (c *Config) validate() error {
	if c.MaxConcurrentFetches <= 0 {
		return ErrInvalidConfig
	}

	if err := c.HTTP.validate(); err != nil {
		return err
	}

	return c.Output.validate()
}

func (h *HTTPConfig) validate() error {
	if h.MaxRedirects < 0 || h.DialTimeout <= 0 || h.HeaderTimeout <= 0 || h.UserAgent == "" {
		return ErrInvalidConfig
	}

	return nil
}

func (o *OutputConfig) validate() error {
	if o.Dir == "" || o.Charset == "" {
		return ErrInvalidConfig
	}

	return nil
}
