package config

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"time"
	_ "time/tzdata"

	"golang.org/x/time/rate"

	"github.com/turbot/songplay-etl/artifact_source"
	"github.com/turbot/songplay-etl/connection"
	"github.com/turbot/songplay-etl/dataset"
	"github.com/turbot/songplay-etl/id_generator"
	"github.com/turbot/songplay-etl/rate_limiter"
	"github.com/turbot/songplay-etl/table_writer"
	"github.com/turbot/songplay-etl/tables"
	"github.com/turbot/songplay-etl/transform"
	"github.com/turbot/songplay-etl/types"
)

const (
	DefaultCatalogPattern  = "song_data/*/*/*/*.json"
	DefaultActivityPattern = "log_data/*/*/*.json"
	DefaultOutputRoot      = "./output"
	DefaultTimeZone        = "UTC"
	DefaultMaxConcurrency  = 16
)

// Config is the explicit configuration of a pipeline run
type Config struct {
	InputRoot       string   `hcl:"input_root,optional"`
	OutputRoot      string   `hcl:"output_root,optional"`
	CatalogPattern  string   `hcl:"catalog_pattern,optional"`
	ActivityPattern string   `hcl:"activity_pattern,optional"`
	Extensions      []string `hcl:"extensions,optional"`
	TimeZone        string   `hcl:"time_zone,optional"`
	Parallelism     int      `hcl:"parallelism,optional"`
	IdGenerator     string   `hcl:"id_generator,optional"`
	SnowflakeNode   int64    `hcl:"snowflake_node,optional"`
	OutputFormat    string   `hcl:"output_format,optional"`
	// if set, prometheus metrics are written to this file when the run completes
	MetricsFile *string `hcl:"metrics_file"`

	Join      *JoinConfig               `hcl:"join,block"`
	RateLimit *RateLimitConfig          `hcl:"rate_limit,block"`
	Aws       *connection.AwsConnection `hcl:"aws,block"`
	Gcp       *connection.GcpConnection `hcl:"gcp,block"`
	Tables    []TableConfig             `hcl:"table,block"`
}

type JoinConfig struct {
	Type      string `hcl:"type,optional"`
	Match     string `hcl:"match,optional"`
	Precision int    `hcl:"precision,optional"`
}

type RateLimitConfig struct {
	MaxConcurrency int64   `hcl:"max_concurrency,optional"`
	FillRate       float64 `hcl:"fill_rate,optional"`
	BucketSize     int64   `hcl:"bucket_size,optional"`
}

// TableConfig overrides the partitioning of a single output table. An empty partition_by writes the table unpartitioned
type TableConfig struct {
	Name        string   `hcl:"name,label"`
	PartitionBy []string `hcl:"partition_by"`
}

// Default returns a config with every optional value set
func Default() *Config {
	policy := transform.DefaultMatchPolicy()
	return &Config{
		OutputRoot:      DefaultOutputRoot,
		CatalogPattern:  DefaultCatalogPattern,
		ActivityPattern: DefaultActivityPattern,
		Extensions:      []string{".json", ".gz"},
		TimeZone:        DefaultTimeZone,
		Parallelism:     runtime.NumCPU(),
		IdGenerator:     id_generator.CounterIdentifier,
		OutputFormat:    table_writer.ParquetWriterIdentifier,
		Join: &JoinConfig{
			Type:      dataset.InnerJoin.String(),
			Match:     string(policy.Mode),
			Precision: policy.Precision,
		},
		RateLimit: &RateLimitConfig{
			MaxConcurrency: DefaultMaxConcurrency,
		},
	}
}

// Validate returns the joined errors of every invalid value
func (c *Config) Validate() error {
	var validationErrors []error
	add := func(err error) {
		if err != nil {
			validationErrors = append(validationErrors, err)
		}
	}

	if c.InputRoot == "" {
		add(errors.New("input_root is required"))
	} else {
		_, err := c.InputLocation()
		add(err)
	}
	_, err := c.OutputLocation()
	add(err)
	_, err = c.CatalogGlob()
	add(err)
	_, err = c.ActivityGlob()
	add(err)
	_, err = c.Location()
	add(err)
	if c.Parallelism < 1 {
		add(fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism))
	}
	_, err = c.NewIdGenerator()
	add(err)
	if !slices.Contains(table_writer.Formats(), c.OutputFormat) {
		add(fmt.Errorf("invalid output_format '%s', must be one of: %v", c.OutputFormat, table_writer.Formats()))
	}
	_, err = c.JoinType()
	add(err)
	add(c.MatchPolicy().Validate())
	add(c.RateLimiterDefinition().Validate())
	if c.Aws != nil {
		add(c.Aws.Validate())
	}
	add(c.validateTables())

	return errors.Join(validationErrors...)
}

func (c *Config) validateTables() error {
	seen := make(map[string]struct{})
	for _, tc := range c.Tables {
		t, ok := tables.ByName(tc.Name)
		if !ok {
			return fmt.Errorf("unknown table '%s'", tc.Name)
		}
		if _, ok := seen[tc.Name]; ok {
			return fmt.Errorf("table '%s' is configured more than once", tc.Name)
		}
		seen[tc.Name] = struct{}{}
		if err := t.ValidatePartitionBy(tc.PartitionBy); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) InputLocation() (types.Location, error) {
	loc, err := types.ParseLocation(c.InputRoot)
	if err != nil {
		return loc, fmt.Errorf("invalid input_root: %w", err)
	}
	return loc, nil
}

func (c *Config) OutputLocation() (types.Location, error) {
	loc, err := types.ParseLocation(c.OutputRoot)
	if err != nil {
		return loc, fmt.Errorf("invalid output_root: %w", err)
	}
	return loc, nil
}

func (c *Config) CatalogGlob() (*artifact_source.Pattern, error) {
	p, err := artifact_source.NewPattern(c.CatalogPattern, c.Extensions)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog_pattern: %w", err)
	}
	return p, nil
}

func (c *Config) ActivityGlob() (*artifact_source.Pattern, error) {
	p, err := artifact_source.NewPattern(c.ActivityPattern, c.Extensions)
	if err != nil {
		return nil, fmt.Errorf("invalid activity_pattern: %w", err)
	}
	return p, nil
}

// Location returns the time zone timestamps are decomposed in
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time_zone '%s': %w", c.TimeZone, err)
	}
	return loc, nil
}

func (c *Config) NewIdGenerator() (id_generator.Generator, error) {
	gen, err := id_generator.New(c.IdGenerator, c.SnowflakeNode)
	if err != nil {
		return nil, fmt.Errorf("invalid id_generator: %w", err)
	}
	return gen, nil
}

func (c *Config) JoinType() (dataset.JoinType, error) {
	if c.Join == nil {
		return dataset.InnerJoin, nil
	}
	return dataset.ParseJoinType(c.Join.Type)
}

func (c *Config) MatchPolicy() transform.MatchPolicy {
	if c.Join == nil {
		return transform.DefaultMatchPolicy()
	}
	return transform.MatchPolicy{
		Mode:      transform.MatchMode(c.Join.Match),
		Precision: c.Join.Precision,
	}
}

func (c *Config) RateLimiterDefinition() *rate_limiter.Definition {
	def := &rate_limiter.Definition{Name: "storage"}
	if c.RateLimit != nil {
		def.MaxConcurrency = c.RateLimit.MaxConcurrency
		def.FillRate = rate.Limit(c.RateLimit.FillRate)
		def.BucketSize = c.RateLimit.BucketSize
	}
	return def
}

// PartitionBy returns the configured partition columns keyed by table name.
// Tables with no table block are absent and use their default partitioning
func (c *Config) PartitionBy() map[string][]string {
	res := make(map[string][]string, len(c.Tables))
	for _, tc := range c.Tables {
		res[tc.Name] = tc.PartitionBy
	}
	return res
}

func (c *Config) Connections() connection.Connections {
	return connection.Connections{Aws: c.Aws, Gcp: c.Gcp}
}
