package registry

import (
	"time"

	"github.com/dbsmedya/mongolens/internal/relation"
	"github.com/dbsmedya/mongolens/internal/schema"
)

// Snapshot is the serializable product of one discovery pass: every
// inferred schema plus the effective relationship edges, enough to rebuild
// the published registry without re-sampling the store.
type Snapshot struct {
	RunID     string                              `json:"run_id"`
	Database  string                              `json:"database"`
	CreatedAt time.Time                           `json:"created_at"`
	Schemas   map[string]*schema.CollectionSchema `json:"schemas"`
	Edges     []relation.Edge                     `json:"edges"`
}

// CollectionNames returns the snapshot's collection names, unsorted.
func (s *Snapshot) CollectionNames() []string {
	names := make([]string, 0, len(s.Schemas))
	for name := range s.Schemas {
		names = append(names, name)
	}
	return names
}
