package config

import (
	"strings"
	"testing"
)

func validTestConfig() *Config {
	cfg := DefaultConfig()
	cfg.Store.Database = "testdb"
	return cfg
}

func TestValidConfig(t *testing.T) {
	cfg := validTestConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected no validation errors, got: %v", err)
	}
}

func TestMissingStoreURI(t *testing.T) {
	cfg := validTestConfig()
	cfg.Store.URI = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for missing store.uri")
	}
	if !strings.Contains(err.Error(), "store.uri") {
		t.Errorf("expected error to mention store.uri, got: %v", err)
	}
}

func TestBadStoreURIScheme(t *testing.T) {
	cfg := validTestConfig()
	cfg.Store.URI = "postgres://localhost:5432"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for non-mongodb uri scheme")
	}
	if !strings.Contains(err.Error(), "mongodb://") {
		t.Errorf("expected error to mention the mongodb scheme, got: %v", err)
	}
}

func TestMissingDatabase(t *testing.T) {
	cfg := validTestConfig()
	cfg.Store.Database = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for missing store.database")
	}
	if !strings.Contains(err.Error(), "store.database") {
		t.Errorf("expected error to mention store.database, got: %v", err)
	}
}

func TestInvalidSampleSize(t *testing.T) {
	cfg := validTestConfig()
	cfg.Discovery.SampleSize = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for zero sample_size")
	}
	if !strings.Contains(err.Error(), "sample_size") {
		t.Errorf("expected error to mention sample_size, got: %v", err)
	}
}

func TestInvalidConcurrency(t *testing.T) {
	cfg := validTestConfig()
	cfg.Discovery.Concurrency = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for negative concurrency")
	}
	if !strings.Contains(err.Error(), "concurrency") {
		t.Errorf("expected error to mention concurrency, got: %v", err)
	}
}

func TestInvalidMinOccurrenceRate(t *testing.T) {
	cfg := validTestConfig()
	cfg.Discovery.MinOccurrenceRate = 1.5

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for min_occurrence_rate > 1")
	}
	if !strings.Contains(err.Error(), "min_occurrence_rate") {
		t.Errorf("expected error to mention min_occurrence_rate, got: %v", err)
	}
}

func TestDefaultPageSizeExceedsMax(t *testing.T) {
	cfg := validTestConfig()
	cfg.Query.DefaultPageSize = 500
	cfg.Query.MaxPageSize = 100

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for default_page_size > max_page_size")
	}
	if !strings.Contains(err.Error(), "default_page_size") {
		t.Errorf("expected error to mention default_page_size, got: %v", err)
	}
}

func TestCacheEnabledWithoutAddr(t *testing.T) {
	cfg := validTestConfig()
	cfg.Cache.Enabled = true
	cfg.Cache.RedisAddr = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for enabled cache without redis_addr")
	}
	if !strings.Contains(err.Error(), "redis_addr") {
		t.Errorf("expected error to mention redis_addr, got: %v", err)
	}
}

func TestInvalidRelationshipKind(t *testing.T) {
	cfg := validTestConfig()
	cfg.Collections = map[string]CollectionConfig{
		"orders": {
			Relationships: []RelationshipConfig{
				{Field: "user_id", Target: "users", Kind: "belongs_to"},
			},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for invalid relationship kind")
	}
	if !strings.Contains(err.Error(), "kind") {
		t.Errorf("expected error to mention kind, got: %v", err)
	}
}

func TestRelationshipMissingField(t *testing.T) {
	cfg := validTestConfig()
	cfg.Collections = map[string]CollectionConfig{
		"orders": {
			Relationships: []RelationshipConfig{
				{Target: "users", Kind: "one"},
			},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for relationship without field")
	}
	if !strings.Contains(err.Error(), "field is required") {
		t.Errorf("expected error to mention required field, got: %v", err)
	}
}

func TestRelationshipMissingTarget(t *testing.T) {
	cfg := validTestConfig()
	cfg.Collections = map[string]CollectionConfig{
		"orders": {
			Relationships: []RelationshipConfig{
				{Field: "user_id", Kind: "one"},
			},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for relationship without target")
	}
	if !strings.Contains(err.Error(), "target is required") {
		t.Errorf("expected error to mention required target, got: %v", err)
	}
}

func TestSuppressWithTargetConflict(t *testing.T) {
	cfg := validTestConfig()
	cfg.Collections = map[string]CollectionConfig{
		"orders": {
			Relationships: []RelationshipConfig{
				{Field: "user_id", Target: "users", Suppress: true},
			},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for suppress combined with target")
	}
	if !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("expected error to mention mutual exclusion, got: %v", err)
	}
}

func TestSuppressWithoutTargetIsValid(t *testing.T) {
	cfg := validTestConfig()
	cfg.Collections = map[string]CollectionConfig{
		"orders": {
			Relationships: []RelationshipConfig{
				{Field: "legacy_id", Suppress: true},
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected suppress-only override to be valid, got: %v", err)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	cfg := validTestConfig()
	cfg.Logging.Level = "verbose"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "logging.level") {
		t.Errorf("expected error to mention logging.level, got: %v", err)
	}
}

func TestInvalidLogFormat(t *testing.T) {
	cfg := validTestConfig()
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for invalid log format")
	}
	if !strings.Contains(err.Error(), "logging.format") {
		t.Errorf("expected error to mention logging.format, got: %v", err)
	}
}

func TestMultipleValidationErrors(t *testing.T) {
	cfg := validTestConfig()
	cfg.Store.Database = ""
	cfg.Discovery.SampleSize = -5
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}

	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors type, got %T", err)
	}
	if len(verrs) < 3 {
		t.Errorf("expected at least 3 validation errors, got %d: %v", len(verrs), verrs)
	}
}

func TestValidationErrorFormat(t *testing.T) {
	err := ValidationError{Field: "store.uri", Message: "uri is required"}
	if err.Error() != "store.uri: uri is required" {
		t.Errorf("unexpected error format: %s", err.Error())
	}

	var empty ValidationErrors
	if empty.Error() != "" {
		t.Errorf("empty ValidationErrors should format to empty string, got %q", empty.Error())
	}
}
