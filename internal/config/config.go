package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"clevr-scenegen/internal/dataset"
	"clevr-scenegen/internal/rng"
	"clevr-scenegen/internal/sink"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SCENEGEN_"

// Config holds all configurable paths and run settings.
type Config struct {
	// Paths
	OutputDir  string `json:"output_dir" yaml:"output_dir" toml:"output_dir" validate:"required"`
	HandoffDir string `json:"handoff_dir" yaml:"handoff_dir" toml:"handoff_dir" validate:"required"`

	// Run settings
	Splits   []string `json:"splits" yaml:"splits" toml:"splits" validate:"min=1,dive,required"`
	Workers  int      `json:"workers" yaml:"workers" toml:"workers" validate:"gte=0"`
	Parallel bool     `json:"parallel" yaml:"parallel" toml:"parallel"`

	Preview Preview `json:"preview" yaml:"preview" toml:"preview"`
	S3      S3      `json:"s3" yaml:"s3" toml:"s3"`
	Log     Log     `json:"log" yaml:"log" toml:"log"`

	Dataset dataset.Params `json:"dataset" yaml:"dataset" toml:"dataset"`
}

// Preview configures layout schematics.
type Preview struct {
	Enabled     bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	Dir         string `json:"dir" yaml:"dir" toml:"dir"`
	Size        int    `json:"size" yaml:"size" toml:"size" validate:"gte=0,lte=4096"`
	Supersample int    `json:"supersample" yaml:"supersample" toml:"supersample" validate:"gte=0,lte=8"`
	Format      string `json:"format" yaml:"format" toml:"format" validate:"omitempty,oneof=webp tga"`
	Labels      bool   `json:"labels" yaml:"labels" toml:"labels"`
}

// S3 selects the S3 sink when Bucket is set.
type S3 struct {
	Bucket    string `json:"bucket" yaml:"bucket" toml:"bucket"`
	Prefix    string `json:"prefix" yaml:"prefix" toml:"prefix"`
	Region    string `json:"region" yaml:"region" toml:"region" validate:"required_with=Bucket"`
	Endpoint  string `json:"endpoint" yaml:"endpoint" toml:"endpoint" validate:"omitempty,url"`
	AccessKey string `json:"-" yaml:"-" toml:"-"`
	SecretKey string `json:"-" yaml:"-" toml:"-"`
}

// Log configures the logger.
type Log struct {
	Level   string `json:"level" yaml:"level" toml:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	File    string `json:"file" yaml:"file" toml:"file"`
	NoColor bool   `json:"no_color" yaml:"no_color" toml:"no_color"`
}

// Default returns the reference run: both splits of the simple face dataset.
func Default() Config {
	return Config{
		OutputDir:  "output",
		HandoffDir: "image_generation",
		Splits:     rng.Splits(),
		Preview: Preview{
			Dir:         "previews",
			Size:        256,
			Supersample: 2,
			Format:      "webp",
			Labels:      true,
		},
		Log:     Log{Level: "info"},
		Dataset: dataset.DefaultParams(),
	}
}

// Load reads a config file over the defaults. The format follows the
// extension: .json, .yaml/.yml or .toml. Fields not set in the file keep
// their default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("config: %s: unsupported format %q", path, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are not an error; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from environment variables read with getenv.
// S3 credentials use the standard AWS names.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}
	str(EnvPrefix+"OUTPUT_DIR", &c.OutputDir)
	str(EnvPrefix+"HANDOFF_DIR", &c.HandoffDir)
	str(EnvPrefix+"LOG_LEVEL", &c.Log.Level)
	str(EnvPrefix+"LOG_FILE", &c.Log.File)
	str(EnvPrefix+"S3_BUCKET", &c.S3.Bucket)
	str(EnvPrefix+"S3_PREFIX", &c.S3.Prefix)
	str(EnvPrefix+"S3_ENDPOINT", &c.S3.Endpoint)
	str("AWS_REGION", &c.S3.Region)
	str("AWS_ACCESS_KEY_ID", &c.S3.AccessKey)
	str("AWS_SECRET_ACCESS_KEY", &c.S3.SecretKey)

	if v := getenv(EnvPrefix + "SPLITS"); v != "" {
		c.Splits = splitList(v)
	}
	if v := getenv(EnvPrefix + "WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sWORKERS: %w", EnvPrefix, err)
		}
		c.Workers = n
	}
	if v := getenv(EnvPrefix + "PARALLEL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %sPARALLEL: %w", EnvPrefix, err)
		}
		c.Parallel = b
	}
	return nil
}

// Resolve applies CLI flags and fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.HandoffDir != "" {
		c.HandoffDir = flags.HandoffDir
	}
	if flags.Splits != "" {
		c.Splits = splitList(flags.Splits)
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Parallel {
		c.Parallel = true
	}
	if flags.Preview {
		c.Preview.Enabled = true
	}
	if flags.Images > 0 {
		c.Dataset.NImages = flags.Images
	}
	if flags.Bucket != "" {
		c.S3.Bucket = flags.Bucket
	}
	if flags.LogLevel != "" {
		c.Log.Level = flags.LogLevel
	}

	// Defaults
	def := Default()
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if c.HandoffDir == "" {
		c.HandoffDir = def.HandoffDir
	}
	if len(c.Splits) == 0 {
		c.Splits = def.Splits
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Preview.Dir == "" {
		c.Preview.Dir = def.Preview.Dir
	}
	if c.Preview.Size <= 0 {
		c.Preview.Size = def.Preview.Size
	}
	if c.Preview.Supersample <= 0 {
		c.Preview.Supersample = def.Preview.Supersample
	}
	if c.Preview.Format == "" {
		c.Preview.Format = def.Preview.Format
	}
}

// Validate checks field constraints and that every split is known.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: %w", err)
	}
	for _, s := range c.Splits {
		if _, err := rng.SeedForSplit(s); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

// Datasets binds the dataset parameters to every configured split.
func (c *Config) Datasets() ([]*dataset.Config, error) {
	out := make([]*dataset.Config, len(c.Splits))
	for i, s := range c.Splits {
		d, err := dataset.New(s, c.Dataset)
		if err != nil {
			return nil, fmt.Errorf("config: split %s: %w", s, err)
		}
		out[i] = d
	}
	return out, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir  string
	HandoffDir string
	Splits     string // comma separated
	Workers    int
	Parallel   bool
	Preview    bool
	Images     int
	Bucket     string
	LogLevel   string
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FromSources layers the sources the commands read, lowest priority first:
// defaults, the config file at path (optional), the .env file, the process
// environment and flags. The result is validated.
func FromSources(path, envFile string, flags Flags) (Config, error) {
	if err := LoadDotEnv(envFile); err != nil {
		return Config{}, err
	}
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	cfg.Resolve(flags)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SinkOptions are the S3 settings in the sink's terms.
func (c *Config) SinkOptions() sink.S3Options {
	return sink.S3Options{
		Bucket:    c.S3.Bucket,
		Prefix:    c.S3.Prefix,
		Region:    c.S3.Region,
		Endpoint:  c.S3.Endpoint,
		AccessKey: c.S3.AccessKey,
		SecretKey: c.S3.SecretKey,
	}
}
