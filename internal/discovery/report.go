package discovery

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Report summarizes one discovery or restore pass.
type Report struct {
	RunID       string              `json:"run_id"`
	StartedAt   time.Time           `json:"started_at"`
	Duration    time.Duration       `json:"duration"`
	Collections int                 `json:"collections"`
	Discovered  int                 `json:"discovered"`
	Skipped     []CollectionFailure `json:"skipped,omitempty"`
	Edges       int                 `json:"edges"`
}

// CollectionFailure records one collection a pass could not publish and why.
type CollectionFailure struct {
	Name string `json:"name"`
	Err  string `json:"error"`
}

// CollectionStats is a summary row for one published collection, combining
// registry data with a live document count.
type CollectionStats struct {
	Name          string `json:"name"`
	DisplayName   string `json:"display_name"`
	DocumentCount int64  `json:"document_count"`
	FieldCount    int    `json:"field_count"`
	SampleSize    int    `json:"sample_size"`
	Outgoing      int    `json:"outgoing"`
	Incoming      int    `json:"incoming"`
}

// Stats reports a per-collection summary across the registry. Document
// counts are fresh estimates from the store, not the ones captured at
// discovery time.
func (o *Orchestrator) Stats(ctx context.Context) ([]CollectionStats, error) {
	entries := o.reg.List()
	stats := make([]CollectionStats, 0, len(entries))
	for _, entry := range entries {
		count, err := o.store.EstimatedCount(ctx, entry.Name)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", entry.Name, err)
		}
		stats = append(stats, CollectionStats{
			Name:          entry.Name,
			DisplayName:   entry.DisplayName,
			DocumentCount: count,
			FieldCount:    entry.Schema.Len(),
			SampleSize:    entry.Schema.SampleSize,
			Outgoing:      len(entry.Outgoing),
			Incoming:      len(entry.Incoming),
		})
	}
	return stats, nil
}

func sortFailures(failures []CollectionFailure) {
	sort.Slice(failures, func(i, j int) bool {
		return failures[i].Name < failures[j].Name
	})
}
