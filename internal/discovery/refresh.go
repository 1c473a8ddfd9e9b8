package discovery

import (
	"context"
	"fmt"
	"sync"

	"github.com/dbsmedya/mongolens/internal/registry"
	"github.com/dbsmedya/mongolens/internal/relation"
	"github.com/dbsmedya/mongolens/internal/store"
)

// Refresh re-samples a single collection and republishes the entries its
// schema change affects. Detection runs over the full schema set again, so
// edges into and out of other collections stay consistent; entries whose
// edge views did not change are left untouched. Concurrent refreshes of the
// same collection are serialized.
func (o *Orchestrator) Refresh(ctx context.Context, name string) (*registry.Entry, error) {
	lock := o.refreshLock(name)
	lock.Lock()
	defer lock.Unlock()

	exists, err := o.store.CollectionExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check collection: %w", err)
	}
	if !exists {
		return nil, &store.NotFoundError{Collection: name}
	}

	res := o.inspect(ctx, o.log, name)
	if res.err != nil {
		return nil, fmt.Errorf("refresh %s: %w", name, res.err)
	}

	schemas := o.reg.Schemas()
	schemas[name] = res.schema

	entries, _, failures := o.buildEntries(schemas)
	for _, f := range failures {
		if f.Name == name {
			return nil, fmt.Errorf("refresh %s: %s", name, f.Err)
		}
		o.log.Warnw("collection skipped", "collection", f.Name, "error", f.Err)
	}

	var refreshed *registry.Entry
	publish := make([]*registry.Entry, 0, 1)
	for _, entry := range entries {
		switch {
		case entry.Name == name:
			refreshed = entry
			publish = append(publish, entry)
		case o.edgesChanged(entry):
			publish = append(publish, entry)
		}
	}
	if refreshed == nil {
		return nil, fmt.Errorf("refresh %s: entry missing after rebuild", name)
	}
	o.reg.PublishAll(publish)

	o.log.Infow("collection refreshed",
		"collection", name,
		"fields", refreshed.Schema.Len(),
		"republished", len(publish),
	)
	return refreshed, nil
}

// edgesChanged reports whether a rebuilt entry's edge views differ from the
// published ones. Entries not yet published always count as changed.
func (o *Orchestrator) edgesChanged(entry *registry.Entry) bool {
	current, err := o.reg.Get(entry.Name)
	if err != nil {
		return true
	}
	return !relation.EqualEdges(current.Outgoing, entry.Outgoing) ||
		!relation.EqualEdges(current.Incoming, entry.Incoming)
}

func (o *Orchestrator) refreshLock(name string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.refreshes[name]
	if !ok {
		lock = &sync.Mutex{}
		o.refreshes[name] = lock
	}
	return lock
}
