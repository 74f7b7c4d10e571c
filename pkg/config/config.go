package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is everything the scraper and the corpus tools need. Values come
// from defaults, an optional YAML file, FENGSHEN_* environment variables and
// command-line flags, in increasing order of precedence.
type Config struct {
	Book       string  `mapstructure:"book" yaml:"book"`
	Author     string  `mapstructure:"author" yaml:"author"`
	FilePrefix string  `mapstructure:"file_prefix" yaml:"file_prefix"`
	OutDir     string  `mapstructure:"outdir" yaml:"outdir"`
	Chapters   string  `mapstructure:"chapters" yaml:"chapters"`
	Delay      float64 `mapstructure:"delay" yaml:"delay"`
	Retries    int     `mapstructure:"retries" yaml:"retries"`
	Remap      string  `mapstructure:"remap" yaml:"remap"`

	CText CTextConfig `mapstructure:"ctext" yaml:"ctext"`
	Text  TextConfig  `mapstructure:"text" yaml:"text"`
	Log   LogConfig   `mapstructure:"log" yaml:"log"`
}

type CTextConfig struct {
	APIURL           string        `mapstructure:"api_url" yaml:"api_url"`
	ReadLinkURL      string        `mapstructure:"readlink_url" yaml:"readlink_url"`
	ChapterURL       string        `mapstructure:"chapter_url" yaml:"chapter_url"`
	Language         string        `mapstructure:"language" yaml:"language"`
	URNKeys          []string      `mapstructure:"urn_keys" yaml:"urn_keys"`
	URNPrefix        string        `mapstructure:"urn_prefix" yaml:"urn_prefix"`
	RateLimitMarkers []string      `mapstructure:"rate_limit_markers" yaml:"rate_limit_markers"`
	Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type TextConfig struct {
	Terminators string `mapstructure:"terminators" yaml:"terminators"`
	TitleFormat string `mapstructure:"title_format" yaml:"title_format"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DelayDuration returns Delay as a time.Duration.
func (c *Config) DelayDuration() time.Duration {
	return time.Duration(c.Delay * float64(time.Second))
}

// ParagraphsPath is the paragraph table under OutDir.
func (c *Config) ParagraphsPath() string {
	return filepath.Join(c.OutDir, c.FilePrefix+"_paragraphs.csv")
}

// SentencesPath is the sentence table under OutDir.
func (c *Config) SentencesPath() string {
	return filepath.Join(c.OutDir, c.FilePrefix+"_sentences.csv")
}

// ManifestPath is the progress manifest under OutDir.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.OutDir, "manifest.json")
}

// ChapterURL renders the chapter page URL for chapter n.
func (c *Config) ChapterURL(n int) string {
	return strings.ReplaceAll(c.CText.ChapterURL, "{n}", fmt.Sprint(n))
}

// DefaultTitle is used when the API gives a chapter no title.
func (c *Config) DefaultTitle(n int) string {
	return fmt.Sprintf(c.Text.TitleFormat, n)
}

// Validate rejects settings the scraper cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Delay < 0 {
		errs = append(errs, fmt.Errorf("delay must not be negative: %v", c.Delay))
	}
	if c.Retries < 0 {
		errs = append(errs, fmt.Errorf("retries must not be negative: %d", c.Retries))
	}
	if c.OutDir == "" {
		errs = append(errs, errors.New("outdir is required"))
	}
	if c.FilePrefix == "" {
		errs = append(errs, errors.New("file_prefix is required"))
	}
	if !strings.Contains(c.CText.ChapterURL, "{n}") {
		errs = append(errs, fmt.Errorf("ctext.chapter_url must contain {n}: %q", c.CText.ChapterURL))
	}
	if c.CText.APIURL == "" || c.CText.ReadLinkURL == "" {
		errs = append(errs, errors.New("ctext.api_url and ctext.readlink_url are required"))
	}
	if !strings.Contains(c.Text.TitleFormat, "%d") {
		errs = append(errs, fmt.Errorf("text.title_format must contain %%d: %q", c.Text.TitleFormat))
	}
	return errors.Join(errs...)
}

// Load builds the configuration. cfgFile may be empty, in which case
// ./fengshen.yaml and $HOME/.fengshen/config.yaml are tried. Flags that
// were set on the command line override everything else.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FENGSHEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("fengshen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".fengshen"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// flagKeys maps config keys to the command-line flags that may set them.
var flagKeys = map[string]string{
	"outdir":     "outdir",
	"chapters":   "chapters",
	"delay":      "delay",
	"retries":    "retries",
	"remap":      "remap",
	"log.level":  "log-level",
	"log.format": "log-format",
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("book", d.Book)
	v.SetDefault("author", d.Author)
	v.SetDefault("file_prefix", d.FilePrefix)
	v.SetDefault("outdir", d.OutDir)
	v.SetDefault("chapters", d.Chapters)
	v.SetDefault("delay", d.Delay)
	v.SetDefault("retries", d.Retries)
	v.SetDefault("remap", d.Remap)
	v.SetDefault("ctext.api_url", d.CText.APIURL)
	v.SetDefault("ctext.readlink_url", d.CText.ReadLinkURL)
	v.SetDefault("ctext.chapter_url", d.CText.ChapterURL)
	v.SetDefault("ctext.language", d.CText.Language)
	v.SetDefault("ctext.urn_keys", d.CText.URNKeys)
	v.SetDefault("ctext.urn_prefix", d.CText.URNPrefix)
	v.SetDefault("ctext.rate_limit_markers", d.CText.RateLimitMarkers)
	v.SetDefault("ctext.timeout", d.CText.Timeout)
	v.SetDefault("text.terminators", d.Text.Terminators)
	v.SetDefault("text.title_format", d.Text.TitleFormat)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// WriteDefault writes the default configuration to path as YAML.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# fengshen configuration
# Every key can also be set through FENGSHEN_<KEY>, e.g. FENGSHEN_DELAY=1.5
# or FENGSHEN_CTEXT_LANGUAGE=en. Command-line flags win over both.

`)
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	return os.WriteFile(path, append(header, data...), 0o644)
}
