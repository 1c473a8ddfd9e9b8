package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	// Validate store connection
	if err := c.validateStore(); err != nil {
		errors = append(errors, err...)
	}

	// Validate discovery settings
	if err := c.validateDiscovery(); err != nil {
		errors = append(errors, err...)
	}

	// Validate query settings
	if err := c.validateQuery(); err != nil {
		errors = append(errors, err...)
	}

	// Validate cache settings
	if err := c.validateCache(); err != nil {
		errors = append(errors, err...)
	}

	// Validate per-collection overrides
	for name, cc := range c.Collections {
		if err := c.validateCollection(name, &cc); err != nil {
			errors = append(errors, err...)
		}
	}

	// Validate logging settings
	if err := c.validateLogging(); err != nil {
		errors = append(errors, err...)
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateStore() ValidationErrors {
	var errors ValidationErrors

	if c.Store.URI == "" {
		errors = append(errors, ValidationError{
			Field:   "store.uri",
			Message: "uri is required",
		})
	} else if !strings.HasPrefix(c.Store.URI, "mongodb://") && !strings.HasPrefix(c.Store.URI, "mongodb+srv://") {
		errors = append(errors, ValidationError{
			Field:   "store.uri",
			Message: "uri must start with 'mongodb://' or 'mongodb+srv://'",
		})
	}

	if c.Store.Database == "" {
		errors = append(errors, ValidationError{
			Field:   "store.database",
			Message: "database name is required",
		})
	}

	if c.Store.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "store.timeout_seconds",
			Message: "timeout_seconds cannot be negative",
		})
	}

	if c.Store.MaxPoolSize < 0 {
		errors = append(errors, ValidationError{
			Field:   "store.max_pool_size",
			Message: "max_pool_size cannot be negative",
		})
	}

	if c.Store.ConnectRetries < 0 {
		errors = append(errors, ValidationError{
			Field:   "store.connect_retries",
			Message: "connect_retries cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateDiscovery() ValidationErrors {
	var errors ValidationErrors

	if c.Discovery.SampleSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "discovery.sample_size",
			Message: "sample_size must be positive",
		})
	}

	if c.Discovery.Concurrency <= 0 {
		errors = append(errors, ValidationError{
			Field:   "discovery.concurrency",
			Message: "concurrency must be positive",
		})
	}

	if c.Discovery.MinOccurrenceRate < 0 || c.Discovery.MinOccurrenceRate > 1 {
		errors = append(errors, ValidationError{
			Field:   "discovery.min_occurrence_rate",
			Message: "min_occurrence_rate must be between 0 and 1",
		})
	}

	return errors
}

func (c *Config) validateQuery() ValidationErrors {
	var errors ValidationErrors

	if c.Query.DefaultPageSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "query.default_page_size",
			Message: "default_page_size must be positive",
		})
	}

	if c.Query.MaxPageSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "query.max_page_size",
			Message: "max_page_size must be positive",
		})
	}

	if c.Query.MaxPageSize > 0 && c.Query.DefaultPageSize > c.Query.MaxPageSize {
		errors = append(errors, ValidationError{
			Field:   "query.default_page_size",
			Message: "default_page_size cannot exceed max_page_size",
		})
	}

	if c.Query.ResolverBatchSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "query.resolver_batch_size",
			Message: "resolver_batch_size must be positive",
		})
	}

	return errors
}

func (c *Config) validateCache() ValidationErrors {
	var errors ValidationErrors

	if c.Cache.Enabled && c.Cache.RedisAddr == "" {
		errors = append(errors, ValidationError{
			Field:   "cache.redis_addr",
			Message: "redis_addr is required when cache is enabled",
		})
	}

	if c.Cache.TTLSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "cache.ttl_seconds",
			Message: "ttl_seconds cannot be negative",
		})
	}

	if c.Cache.RedisDB < 0 {
		errors = append(errors, ValidationError{
			Field:   "cache.redis_db",
			Message: "redis_db cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateCollection(name string, cc *CollectionConfig) ValidationErrors {
	var errors ValidationErrors
	prefix := fmt.Sprintf("collections.%s", name)

	for i, rel := range cc.Relationships {
		relPrefix := fmt.Sprintf("%s.relationships[%d]", prefix, i)

		if rel.Field == "" {
			errors = append(errors, ValidationError{
				Field:   relPrefix + ".field",
				Message: "field is required",
			})
		}

		validKinds := map[string]bool{"one": true, "many": true, "": true}
		if !validKinds[rel.Kind] {
			errors = append(errors, ValidationError{
				Field:   relPrefix + ".kind",
				Message: "kind must be 'one' or 'many'",
			})
		}

		if !rel.Suppress && rel.Target == "" {
			errors = append(errors, ValidationError{
				Field:   relPrefix + ".target",
				Message: "target is required unless suppress is set",
			})
		}

		if rel.Suppress && rel.Target != "" {
			errors = append(errors, ValidationError{
				Field:   relPrefix,
				Message: "suppress and target are mutually exclusive",
			})
		}
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
