// Package discovery runs the sampling, inference, detection and publication
// pipeline that turns a live database into registry entries.
package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dbsmedya/mongolens/internal/cache"
	"github.com/dbsmedya/mongolens/internal/config"
	"github.com/dbsmedya/mongolens/internal/logger"
	"github.com/dbsmedya/mongolens/internal/registry"
	"github.com/dbsmedya/mongolens/internal/relation"
	"github.com/dbsmedya/mongolens/internal/schema"
	"github.com/dbsmedya/mongolens/internal/store"
)

const (
	defaultSampleSize  = 100
	defaultConcurrency = 4
	systemPrefix       = "system."
)

// Orchestrator drives discovery passes and keeps the registry current.
type Orchestrator struct {
	store store.Store
	reg   *registry.Registry
	cache cache.Cache
	cfg   *config.Config
	log   *logger.Logger

	mu        sync.Mutex
	refreshes map[string]*sync.Mutex
}

// New builds an Orchestrator. Store, registry and config are required; a
// nil cache degrades to the no-op cache and a nil logger to a silent one.
func New(st store.Store, reg *registry.Registry, c cache.Cache, cfg *config.Config, log *logger.Logger) (*Orchestrator, error) {
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	if reg == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if c == nil {
		c = cache.Noop{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Orchestrator{
		store:     st,
		reg:       reg,
		cache:     c,
		cfg:       cfg,
		log:       log,
		refreshes: make(map[string]*sync.Mutex),
	}, nil
}

// Discover samples every eligible collection, infers schemas, detects
// relationships, merges configuration overrides and publishes the result.
// Per-collection problems are recorded in the report and skipped; only an
// unreachable store fails the pass itself.
func (o *Orchestrator) Discover(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	log := o.log.WithRun(runID)
	started := time.Now()

	if err := o.store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("store unreachable: %w", err)
	}
	all, err := o.store.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	names := o.eligible(all)
	log.Infow("discovery started",
		"collections", len(names),
		"sample_size", o.sampleSize(),
		"concurrency", o.concurrency(),
	)

	schemas, failures := o.inspectAll(ctx, log, names)

	entries, edges, buildFailures := o.buildEntries(schemas)
	for _, f := range buildFailures {
		log.Warnw("collection skipped", "collection", f.Name, "error", f.Err)
	}
	failures = append(failures, buildFailures...)
	sortFailures(failures)

	o.reg.PublishAll(entries)

	snap := &registry.Snapshot{
		RunID:     runID,
		Database:  o.cfg.Store.Database,
		CreatedAt: started.UTC(),
		Schemas:   schemas,
		Edges:     edges,
	}
	if err := o.cache.Save(ctx, snap); err != nil {
		log.Warnw("snapshot save failed", "error", err)
	}

	report := &Report{
		RunID:       runID,
		StartedAt:   started,
		Duration:    time.Since(started),
		Collections: len(names),
		Discovered:  len(entries),
		Skipped:     failures,
		Edges:       len(edges),
	}
	log.Infow("discovery finished",
		"discovered", report.Discovered,
		"skipped", len(report.Skipped),
		"edges", report.Edges,
		"duration", report.Duration,
	)
	return report, nil
}

// Restore publishes entries rebuilt from a cached snapshot, skipping the
// sampling phase. Detection and overrides run against the snapshot's
// schemas, so configuration changed since the snapshot still takes effect.
func (o *Orchestrator) Restore(snap *registry.Snapshot) (*Report, error) {
	if snap == nil || len(snap.Schemas) == 0 {
		return nil, fmt.Errorf("snapshot is empty")
	}
	started := time.Now()
	log := o.log.WithRun(snap.RunID)

	entries, edges, failures := o.buildEntries(snap.Schemas)
	sortFailures(failures)
	o.reg.PublishAll(entries)

	log.Infow("registry restored from snapshot",
		"snapshot_created", snap.CreatedAt,
		"collections", len(entries),
		"edges", len(edges),
	)
	return &Report{
		RunID:       snap.RunID,
		StartedAt:   started,
		Duration:    time.Since(started),
		Collections: len(snap.Schemas),
		Discovered:  len(entries),
		Skipped:     failures,
		Edges:       len(edges),
	}, nil
}

type inspection struct {
	name   string
	schema *schema.CollectionSchema
	err    error
}

// inspectAll fans the per-collection sample-and-infer work out to a bounded
// worker pool and gathers the results.
func (o *Orchestrator) inspectAll(ctx context.Context, log *logger.Logger, names []string) (map[string]*schema.CollectionSchema, []CollectionFailure) {
	jobs := make(chan string)
	results := make(chan inspection, len(names))
	var wg sync.WaitGroup

	for i := 0; i < o.concurrency(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				results <- o.inspect(ctx, log, name)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, name := range names {
			jobs <- name
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	schemas := make(map[string]*schema.CollectionSchema, len(names))
	var failures []CollectionFailure
	for res := range results {
		if res.err != nil {
			log.Warnw("collection skipped", "collection", res.name, "error", res.err)
			failures = append(failures, CollectionFailure{Name: res.name, Err: res.err.Error()})
			continue
		}
		schemas[res.name] = res.schema
	}
	return schemas, failures
}

// inspect samples one collection, infers its schema, and attaches the
// store's document count estimate.
func (o *Orchestrator) inspect(ctx context.Context, log *logger.Logger, name string) inspection {
	if err := ctx.Err(); err != nil {
		return inspection{name: name, err: err}
	}
	docs, err := o.store.Sample(ctx, name, o.sampleSize())
	if err != nil {
		return inspection{name: name, err: fmt.Errorf("sample: %w", err)}
	}
	cs := schema.Infer(name, docs)
	if count, err := o.store.EstimatedCount(ctx, name); err != nil {
		log.Warnw("count estimate failed", "collection", name, "error", err)
	} else {
		cs.DocumentCount = count
	}
	log.Debugw("collection inspected",
		"collection", name,
		"fields", cs.Len(),
		"sampled", cs.SampleSize,
	)
	return inspection{name: name, schema: cs}
}

// buildEntries runs detection over the schema set, merges configuration
// overrides and assembles publishable entries with their edge views. A
// configuration conflict fails only its own collection.
func (o *Orchestrator) buildEntries(schemas map[string]*schema.CollectionSchema) ([]*registry.Entry, []relation.Edge, []CollectionFailure) {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	detected := relation.Detect(schemas)

	var failures []CollectionFailure
	var edges []relation.Edge
	pending := make(map[string]*registry.Entry, len(names))
	for _, name := range names {
		cc, _ := o.cfg.GetCollection(name)
		entry, err := registry.BuildEntry(name, schemas[name], cc, o.cfg.Discovery.MinOccurrenceRate)
		if err != nil {
			failures = append(failures, CollectionFailure{Name: name, Err: err.Error()})
			continue
		}
		merged, err := registry.MergeRelationships(name, schemas[name], detected, cc.Relationships, names)
		if err != nil {
			failures = append(failures, CollectionFailure{Name: name, Err: err.Error()})
			continue
		}
		pending[name] = entry
		edges = append(edges, merged...)
	}

	graph := relation.NewGraph(edges)
	entries := make([]*registry.Entry, 0, len(pending))
	for _, name := range names {
		entry, ok := pending[name]
		if !ok {
			continue
		}
		entry.Outgoing = graph.Outgoing(name)
		entry.Incoming = graph.Incoming(name)
		entries = append(entries, entry)
	}
	return entries, edges, failures
}

// eligible drops system collections and configured exclusions.
func (o *Orchestrator) eligible(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if strings.HasPrefix(name, systemPrefix) || o.cfg.IsExcluded(name) {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (o *Orchestrator) sampleSize() int {
	if o.cfg.Discovery.SampleSize > 0 {
		return o.cfg.Discovery.SampleSize
	}
	return defaultSampleSize
}

func (o *Orchestrator) concurrency() int {
	if o.cfg.Discovery.Concurrency > 0 {
		return o.cfg.Discovery.Concurrency
	}
	return defaultConcurrency
}
