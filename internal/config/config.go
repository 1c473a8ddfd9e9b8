// Package config provides configuration structures and loading for MongoLens.
package config

import "time"

// Config represents the complete application configuration.
type Config struct {
	Store       StoreConfig                 `yaml:"store" mapstructure:"store"`
	Discovery   DiscoveryConfig             `yaml:"discovery" mapstructure:"discovery"`
	Query       QueryConfig                 `yaml:"query" mapstructure:"query"`
	Cache       CacheConfig                 `yaml:"cache" mapstructure:"cache"`
	Collections map[string]CollectionConfig `yaml:"collections" mapstructure:"collections"`
	Logging     LoggingConfig               `yaml:"logging" mapstructure:"logging"`
}

// StoreConfig represents the document store connection configuration.
type StoreConfig struct {
	URI            string `yaml:"uri" mapstructure:"uri"`
	Database       string `yaml:"database" mapstructure:"database"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	MaxPoolSize    int    `yaml:"max_pool_size" mapstructure:"max_pool_size"`
	ConnectRetries int    `yaml:"connect_retries" mapstructure:"connect_retries"`
}

// Timeout returns the per-operation store timeout as a duration.
func (s *StoreConfig) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// DiscoveryConfig represents schema discovery settings.
type DiscoveryConfig struct {
	SampleSize          int      `yaml:"sample_size" mapstructure:"sample_size"`
	Concurrency         int      `yaml:"concurrency" mapstructure:"concurrency"`
	ExcludedCollections []string `yaml:"excluded_collections" mapstructure:"excluded_collections"`
	MinOccurrenceRate   float64  `yaml:"min_occurrence_rate" mapstructure:"min_occurrence_rate"`
}

// QueryConfig represents query engine settings.
type QueryConfig struct {
	DefaultPageSize   int `yaml:"default_page_size" mapstructure:"default_page_size"`
	MaxPageSize       int `yaml:"max_page_size" mapstructure:"max_page_size"`
	ResolverBatchSize int `yaml:"resolver_batch_size" mapstructure:"resolver_batch_size"`
}

// CacheConfig represents the optional schema snapshot cache.
type CacheConfig struct {
	Enabled       bool   `yaml:"enabled" mapstructure:"enabled"`
	RedisAddr     string `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string `yaml:"redis_password" mapstructure:"redis_password"`
	RedisDB       int    `yaml:"redis_db" mapstructure:"redis_db"`
	KeyPrefix     string `yaml:"key_prefix" mapstructure:"key_prefix"`
	TTLSeconds    int    `yaml:"ttl_seconds" mapstructure:"ttl_seconds"`
}

// TTL returns the snapshot time-to-live as a duration. Zero means no expiry.
func (c *CacheConfig) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

// CollectionConfig represents per-collection user overrides.
type CollectionConfig struct {
	DisplayName    string                 `yaml:"display_name" mapstructure:"display_name"`
	ListFields     []string               `yaml:"list_fields" mapstructure:"list_fields"`
	SearchFields   []string               `yaml:"search_fields" mapstructure:"search_fields"`
	SortableFields []string               `yaml:"sortable_fields" mapstructure:"sortable_fields"`
	Fields         map[string]FieldConfig `yaml:"fields" mapstructure:"fields"`
	Relationships  []RelationshipConfig   `yaml:"relationships" mapstructure:"relationships"`
}

// FieldConfig represents explicit overrides for a single field.
// Pointer booleans distinguish "not set" from an explicit false.
type FieldConfig struct {
	Label      string `yaml:"label" mapstructure:"label"`
	Searchable *bool  `yaml:"searchable,omitempty" mapstructure:"searchable"`
	Sortable   *bool  `yaml:"sortable,omitempty" mapstructure:"sortable"`
	Hidden     *bool  `yaml:"hidden,omitempty" mapstructure:"hidden"`
}

// RelationshipConfig forces or suppresses a detected relationship on a field.
type RelationshipConfig struct {
	Field    string `yaml:"field" mapstructure:"field"`
	Target   string `yaml:"target" mapstructure:"target"`
	Kind     string `yaml:"kind" mapstructure:"kind"` // "one" or "many"
	Suppress bool   `yaml:"suppress" mapstructure:"suppress"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			URI:            "mongodb://localhost:27017",
			TimeoutSeconds: 10,
			MaxPoolSize:    10,
			ConnectRetries: 3,
		},
		Discovery: DiscoveryConfig{
			SampleSize:        100,
			Concurrency:       4,
			MinOccurrenceRate: 0,
		},
		Query: QueryConfig{
			DefaultPageSize:   20,
			MaxPageSize:       100,
			ResolverBatchSize: 100,
		},
		Cache: CacheConfig{
			Enabled:    false,
			RedisAddr:  "localhost:6379",
			KeyPrefix:  "mongolens",
			TTLSeconds: 3600,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// GetCollection returns the override config for a collection, if any.
func (c *Config) GetCollection(name string) (CollectionConfig, bool) {
	cc, ok := c.Collections[name]
	return cc, ok
}

// IsExcluded reports whether a collection is excluded from discovery
// by configuration.
func (c *Config) IsExcluded(name string) bool {
	for _, excluded := range c.Discovery.ExcludedCollections {
		if excluded == name {
			return true
		}
	}
	return false
}
