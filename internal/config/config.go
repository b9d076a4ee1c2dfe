// Package config loads the faceaug TOML configuration file.
//
// Values are resolved in three layers: built-in defaults, the config file,
// and command-line flags (applied by the caller). A missing file is not an
// error.
package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/faceaug/pkg/augment"
	"github.com/matzehuels/faceaug/pkg/dataset"
	"github.com/matzehuels/faceaug/pkg/errors"
	"github.com/matzehuels/faceaug/pkg/pipeline"
)

const appName = "faceaug"

// Cache and state backends.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config is the root of the configuration file.
type Config struct {
	Augment Augment `toml:"augment"`
	Dataset Dataset `toml:"dataset"`
	Output  Output  `toml:"output"`
	Cache   Cache   `toml:"cache"`
	Service Service `toml:"service"`
}

// Augment holds the augmentation ranges. Scale, rotation, shear and
// translations accept a scalar or a [min, max] pair.
type Augment struct {
	Count            int           `toml:"count"`
	Seed             uint64        `toml:"seed"`
	HFlip            bool          `toml:"hflip"`
	VFlip            bool          `toml:"vflip"`
	Scale            augment.Bound `toml:"scale"`
	ScaleAxisEqually bool          `toml:"scale_axis_equally"`
	Rotation         augment.Bound `toml:"rotation"`
	Shear            augment.Bound `toml:"shear"`
	TranslationX     augment.Bound `toml:"translation_x"`
	TranslationY     augment.Bound `toml:"translation_y"`
	Brightness       float64       `toml:"brightness"`
	NoiseMean        float64       `toml:"noise_mean"`
	NoiseStd         float64       `toml:"noise_std"`
	Workers          int           `toml:"workers"`
}

// Dataset selects the source images.
type Dataset struct {
	Extensions []string `toml:"extensions"`
	StartAt    int      `toml:"start_at"`
	Count      int      `toml:"count"`
}

// Output configures the written files. Crop holds inclusive corners
// [x0, y0, x1, y1]; an empty list disables cropping.
type Output struct {
	AugDir      string `toml:"aug_dir"`
	UnaugDir    string `toml:"unaug_dir"`
	WriteAug    bool   `toml:"write_aug"`
	WriteUnaug  bool   `toml:"write_unaug"`
	Crop        []int  `toml:"crop"`
	Size        int    `toml:"size"`
	Format      string `toml:"format"`
	JPEGQuality int    `toml:"jpeg_quality"`
}

// Cache selects the augmented-set cache.
type Cache struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	TTL       Duration `toml:"ttl"`
}

// Service configures `faceaug serve`.
type Service struct {
	Bind           string `toml:"bind"`
	InputDir       string `toml:"input_dir"`
	StateBackend   string `toml:"state_backend"`
	StatePath      string `toml:"state_path"`
	RedisAddr      string `toml:"redis_addr"`
	RedisKey       string `toml:"redis_key"`
	MongoURI       string `toml:"mongo_uri"`
	MongoDatabase  string `toml:"mongo_database"`
	MaxUploadBytes int64  `toml:"max_upload_bytes"`
}

// Duration is a time.Duration written as a string such as "168h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid duration %q", text)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration, which reproduces the LFW
// training set layout.
func Default() *Config {
	return &Config{
		Augment: Augment{
			Count:            pipeline.DefaultVariants,
			Seed:             pipeline.DefaultSeed,
			HFlip:            true,
			Scale:            augment.Pair(0.82, 1.10),
			ScaleAxisEqually: true,
			Rotation:         augment.Scalar(8),
			Shear:            augment.Scalar(0),
			TranslationX:     augment.Scalar(5),
			TranslationY:     augment.Scalar(5),
			Brightness:       0.1,
		},
		Dataset: Dataset{
			Extensions: []string{"jpg"},
		},
		Output: Output{
			AugDir:      "out/aug",
			UnaugDir:    "out/unaug",
			WriteAug:    true,
			Crop:        []int{83, 92, 166, 175},
			Size:        dataset.DefaultSize,
			Format:      dataset.DefaultFormat,
			JPEGQuality: dataset.DefaultQuality,
		},
		Cache: Cache{
			Backend: BackendNone,
			TTL:     Duration{7 * 24 * time.Hour},
		},
		Service: Service{
			Bind:           "127.0.0.1:7480",
			InputDir:       "uploads",
			StateBackend:   BackendFile,
			StatePath:      "state.json",
			RedisKey:       "faceaug:state",
			MongoDatabase:  appName,
			MaxUploadBytes: 10 << 20,
		},
	}
}

// Path returns the default config file location
// ($XDG_CONFIG_HOME/faceaug/config.toml or ~/.config/faceaug/config.toml).
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}
	if err := Decode(string(data), cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode parses TOML text into cfg, rejecting unknown keys.
func Decode(text string, cfg *Config) error {
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	return nil
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg *Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := c.AugmentConfig(); err != nil {
		return err
	}
	if err := augment.ValidateCount(c.Augment.Count); err != nil {
		return err
	}
	if c.Augment.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "augment.workers must not be negative")
	}
	if c.Dataset.StartAt < 0 || c.Dataset.Count < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "dataset.start_at and dataset.count must not be negative")
	}
	for _, ext := range c.Dataset.Extensions {
		if err := errors.ValidateExtension(ext); err != nil {
			return err
		}
	}
	if _, err := c.CropRect(); err != nil {
		return err
	}
	if err := errors.ValidateExtension(c.Output.Format); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Service.StateBackend {
	case BackendFile:
	case BackendRedis:
		if c.Service.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "service.redis_addr is required for the redis state backend")
		}
	case BackendMongo:
		if c.Service.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "service.mongo_uri is required for the mongo state backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown state backend %q", c.Service.StateBackend)
	}
	return nil
}

// AugmentConfig resolves the [augment] section into engine ranges.
func (c *Config) AugmentConfig() (augment.Config, error) {
	a := c.Augment
	out := augment.Config{
		HFlip:            a.HFlip,
		VFlip:            a.VFlip,
		ScaleAxisEqually: a.ScaleAxisEqually,
		Brightness:       a.Brightness,
		NoiseMean:        a.NoiseMean,
		NoiseStd:         a.NoiseStd,
	}
	var err error
	if out.Scale, err = a.Scale.Scale(); err != nil {
		return out, err
	}
	ranges := []struct {
		name string
		b    augment.Bound
		dst  *augment.IntRange
	}{
		{"rotation", a.Rotation, &out.Rotation},
		{"shear", a.Shear, &out.Shear},
		{"translation_x", a.TranslationX, &out.TranslationX},
		{"translation_y", a.TranslationY, &out.TranslationY},
	}
	for _, r := range ranges {
		v, err := r.b.Symmetric()
		if err != nil {
			return out, errors.Wrap(errors.ErrCodeInvalidConfig, err, "augment.%s", r.name)
		}
		*r.dst = v
	}
	return out, out.Validate()
}

// CropRect returns the output crop. The zero rectangle disables cropping.
func (c *Config) CropRect() (rect [4]int, err error) {
	switch len(c.Output.Crop) {
	case 0:
		return rect, nil
	case 4:
		copy(rect[:], c.Output.Crop)
		if rect[0] > rect[2] || rect[1] > rect[3] || rect[0] < 0 || rect[1] < 0 {
			return rect, errors.New(errors.ErrCodeInvalidConfig, "output.crop corners %v are out of order", c.Output.Crop)
		}
		return rect, nil
	}
	return rect, errors.New(errors.ErrCodeInvalidConfig, "output.crop needs 4 values [x0, y0, x1, y1], got %d", len(c.Output.Crop))
}

// PipelineOptions converts the configuration into pipeline options for
// the given source directories.
func (c *Config) PipelineOptions(dirs []string) (pipeline.Options, error) {
	aug, err := c.AugmentConfig()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{
		Dirs:       dirs,
		Extensions: c.Dataset.Extensions,
		StartAt:    c.Dataset.StartAt,
		Count:      c.Dataset.Count,
		Variants:   c.Augment.Count,
		Seed:       c.Augment.Seed,
		Augment:    aug,
		Workers:    c.Augment.Workers,
		AugDir:     c.Output.AugDir,
		UnaugDir:   c.Output.UnaugDir,
		WriteAug:   c.Output.WriteAug,
		WriteUnaug: c.Output.WriteUnaug,
		Size:       c.Output.Size,
		Format:     c.Output.Format,
		Quality:    c.Output.JPEGQuality,
	}
	crop, err := c.CropRect()
	if err != nil {
		return opts, err
	}
	if len(c.Output.Crop) == 4 {
		opts.Crop = dataset.CropRect(crop[0], crop[1], crop[2], crop[3])
	}
	return opts, nil
}

// CacheDir returns the cache directory: cache.dir if set, otherwise
// $XDG_CACHE_HOME/faceaug or ~/.cache/faceaug.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
