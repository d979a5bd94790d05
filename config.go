package seqstore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/seqstore/datastore"
	"github.com/hupe1980/seqstore/resource"
)

// Config is the file form of the Open options.
//
//	provider: lazy          # eager | lazy | iteration
//	cache_size: 1024
//	duplicates: last-wins   # last-wins | first-wins | reject
//	lookup: memento         # memento | range
//	queue_size: 64
//	filter:
//	  include: [chr1, chr2]
//	  exclude: [chrM]
//	  match: "^chr[0-9]+$"
//	log:
//	  level: info           # debug | info | warn | error
//	  format: text          # text | json | console
//	resources:
//	  memory_limit_bytes: 268435456
//	  max_producers: 4
//	  io_limit_bytes_per_sec: 0
type Config struct {
	Provider   string          `yaml:"provider"`
	CacheSize  int             `yaml:"cache_size"`
	Duplicates string          `yaml:"duplicates"`
	Lookup     string          `yaml:"lookup"`
	QueueSize  int             `yaml:"queue_size"`
	Filter     FilterConfig    `yaml:"filter"`
	Log        LogConfig       `yaml:"log"`
	Resources  resource.Config `yaml:"resources"`
}

// FilterConfig describes a construction-time id filter. All present
// clauses must accept an id.
type FilterConfig struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
	Match   string   `yaml:"match"`
}

// LogConfig selects the logger built by Config.Options.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML. Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Options converts the config. The returned options may be extended or
// overridden by options appended after them.
func (c *Config) Options() ([]Option, error) {
	var opts []Option

	hint, err := ParseProviderHint(c.Provider)
	if err != nil {
		return nil, err
	}
	opts = append(opts, WithProviderHint(hint))

	if c.CacheSize < 0 {
		return nil, fmt.Errorf("%w: cache_size %d", ErrInvalidArgument, c.CacheSize)
	}
	if c.CacheSize > 0 {
		opts = append(opts, WithCacheSize(c.CacheSize))
	}

	policy, err := parseDuplicatePolicy(c.Duplicates)
	if err != nil {
		return nil, err
	}
	opts = append(opts, WithDuplicatePolicy(policy))

	lookup, err := parseLookupMode(c.Lookup)
	if err != nil {
		return nil, err
	}
	opts = append(opts, WithLookupMode(lookup))

	if c.QueueSize != 0 {
		opts = append(opts, WithQueueSize(c.QueueSize))
	}

	filter, err := c.Filter.build()
	if err != nil {
		return nil, err
	}
	if filter != nil {
		opts = append(opts, WithFilter(filter))
	}

	logger, err := c.Log.build()
	if err != nil {
		return nil, err
	}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}

	if c.Resources != (resource.Config{}) {
		opts = append(opts, WithResourceController(resource.NewController(c.Resources)))
	}
	return opts, nil
}

func (f FilterConfig) build() (datastore.Filter, error) {
	var clauses []datastore.Filter
	if len(f.Include) > 0 {
		clauses = append(clauses, datastore.IncludeIDs(f.Include...))
	}
	if len(f.Exclude) > 0 {
		clauses = append(clauses, datastore.ExcludeIDs(f.Exclude...))
	}
	if f.Match != "" {
		re, err := regexp.Compile(f.Match)
		if err != nil {
			return nil, fmt.Errorf("filter match: %w", err)
		}
		clauses = append(clauses, datastore.MatchRegexp(re))
	}
	switch len(clauses) {
	case 0:
		return nil, nil
	case 1:
		return clauses[0], nil
	default:
		return datastore.And(clauses...), nil
	}
}

func (l LogConfig) build() (*Logger, error) {
	if l.Level == "" && l.Format == "" {
		return nil, nil
	}
	var level slog.Level
	if l.Level != "" {
		if err := level.UnmarshalText([]byte(l.Level)); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}
	switch strings.ToLower(l.Format) {
	case "", "text":
		return NewTextLogger(level), nil
	case "json":
		return NewJSONLogger(level), nil
	case "console":
		return NewConsoleLogger(os.Stderr, level), nil
	default:
		return nil, fmt.Errorf("%w: log format %q", ErrInvalidArgument, l.Format)
	}
}

func parseDuplicatePolicy(s string) (datastore.DuplicatePolicy, error) {
	switch strings.ToLower(s) {
	case "", "last-wins":
		return datastore.LastWins, nil
	case "first-wins":
		return datastore.FirstWins, nil
	case "reject":
		return datastore.RejectDuplicates, nil
	default:
		return 0, fmt.Errorf("%w: duplicates %q", ErrInvalidArgument, s)
	}
}

func parseLookupMode(s string) (datastore.LookupMode, error) {
	switch strings.ToLower(s) {
	case "", "memento":
		return datastore.LookupMemento, nil
	case "range":
		return datastore.LookupRange, nil
	default:
		return 0, fmt.Errorf("%w: lookup %q", ErrInvalidArgument, s)
	}
}
