package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// OutputType selects the sink kind for one configured topic.
type OutputType string

const (
	// OutputCSV materializes the topic as one CSV file per bag.
	OutputCSV OutputType = "csv"
	// OutputImageDir materializes the topic as a directory of numbered PNGs.
	OutputImageDir OutputType = "dir_of_imgs"
)

// Bound is the exclusive upper limit of an entry's index window. The zero
// value is unbounded, so the -1 sentinel from the config file never leaks
// past loading.
type Bound struct {
	n       int
	bounded bool
}

// EndAt returns a Bound that excludes indices >= n.
func EndAt(n int) Bound {
	return Bound{n: n, bounded: true}
}

// NoEnd returns the unbounded Bound.
func NoEnd() Bound {
	return Bound{}
}

// Contains reports whether index i falls below the bound.
func (b Bound) Contains(i int) bool {
	return !b.bounded || i < b.n
}

func (b Bound) String() string {
	if !b.bounded {
		return "unbounded"
	}
	return fmt.Sprintf("%d", b.n)
}

// Entry is one validated topic of interest from the extraction schema.
type Entry struct {
	// Topic is the source rosbag topic, unique across the schema.
	Topic string
	// OutputName is the file or directory stem under the bag's output dir.
	OutputName string
	OutputType OutputType
	// Start is the first topic index eligible for extraction (inclusive).
	Start int
	// End is the exclusive upper index bound.
	End Bound
	// Stride keeps every Nth eligible message; 1 keeps all.
	Stride int
	// ExtraOptions is forwarded verbatim to the field extractor.
	ExtraOptions map[string]any
}

// Schema is the immutable extraction configuration for one run.
type Schema struct {
	Entries []Entry
}

// Entry returns the schema entry for topic, if any.
func (s *Schema) Entry(topic string) (Entry, bool) {
	for _, e := range s.Entries {
		if e.Topic == topic {
			return e, true
		}
	}
	return Entry{}, false
}

type rawSchema struct {
	DataSchema []rawEntry `yaml:"data_schema"`
}

type rawEntry struct {
	Topic        *string        `yaml:"rosbag_topic"`
	OutputName   *string        `yaml:"output_dir"`
	OutputType   *string        `yaml:"output_type"`
	StartIdx     *int           `yaml:"start_idx"`
	EndIdx       *int           `yaml:"end_idx"`
	ThrottleRate *int           `yaml:"throttle_rate"`
	ExtraOptions map[string]any `yaml:"extra_options"`
}

// LoadSchema reads and validates the YAML extraction schema. Missing required
// keys are errors rather than defaults; the only documented sentinel is
// end_idx: -1, which loads as the unbounded Bound.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}

	var raw rawSchema
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	if len(raw.DataSchema) == 0 {
		return nil, errors.New("schema has no data_schema entries")
	}

	schema := &Schema{Entries: make([]Entry, 0, len(raw.DataSchema))}
	seen := make(map[string]struct{}, len(raw.DataSchema))

	for i, r := range raw.DataSchema {
		entry, err := r.validate()
		if err != nil {
			return nil, fmt.Errorf("data_schema[%d]: %w", i, err)
		}
		if _, dup := seen[entry.Topic]; dup {
			return nil, fmt.Errorf("data_schema[%d]: duplicate rosbag_topic %q", i, entry.Topic)
		}
		seen[entry.Topic] = struct{}{}
		schema.Entries = append(schema.Entries, entry)
	}

	return schema, nil
}

func (r rawEntry) validate() (Entry, error) {
	if r.Topic == nil || *r.Topic == "" {
		return Entry{}, errors.New("rosbag_topic is required")
	}
	if r.OutputName == nil || *r.OutputName == "" {
		return Entry{}, errors.New("output_dir is required")
	}
	if r.OutputType == nil {
		return Entry{}, errors.New("output_type is required")
	}
	outputType := OutputType(*r.OutputType)
	if outputType != OutputCSV && outputType != OutputImageDir {
		return Entry{}, fmt.Errorf("output_type %q must be %q or %q", *r.OutputType, OutputCSV, OutputImageDir)
	}
	if r.StartIdx == nil {
		return Entry{}, errors.New("start_idx is required")
	}
	if *r.StartIdx < 0 {
		return Entry{}, fmt.Errorf("start_idx %d must be >= 0", *r.StartIdx)
	}
	if r.EndIdx == nil {
		return Entry{}, errors.New("end_idx is required")
	}
	end := NoEnd()
	switch {
	case *r.EndIdx == -1:
		// documented sentinel for "no upper bound"
	case *r.EndIdx >= 0:
		end = EndAt(*r.EndIdx)
	default:
		return Entry{}, fmt.Errorf("end_idx %d must be >= 0, or -1 for unbounded", *r.EndIdx)
	}
	if r.ThrottleRate == nil {
		return Entry{}, errors.New("throttle_rate is required")
	}
	if *r.ThrottleRate < 1 {
		return Entry{}, fmt.Errorf("throttle_rate %d must be >= 1", *r.ThrottleRate)
	}

	return Entry{
		Topic:        *r.Topic,
		OutputName:   *r.OutputName,
		OutputType:   outputType,
		Start:        *r.StartIdx,
		End:          end,
		Stride:       *r.ThrottleRate,
		ExtraOptions: r.ExtraOptions,
	}, nil
}

// Runtime holds process-level settings, populated from environment variables.
type Runtime struct {
	LogLevel        string
	LogFormat       string
	MetricsAddr     string
	ShutdownTimeout time.Duration
}

// LoadRuntime reads runtime settings from environment variables, applying
// defaults where unset. MetricsAddr empty means the metrics server stays off.
func LoadRuntime() (*Runtime, error) {
	shutdownStr := envOrDefault("SHUTDOWN_TIMEOUT", "10s")
	shutdownTimeout, err := time.ParseDuration(shutdownStr)
	if err != nil || shutdownTimeout <= 0 {
		return nil, errors.New("invalid SHUTDOWN_TIMEOUT")
	}

	return &Runtime{
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		MetricsAddr:     os.Getenv("METRICS_ADDR"),
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
