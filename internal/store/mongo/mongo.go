// Package mongo implements the store contract on the official MongoDB
// driver: random sampling through $sample, filter translation to operator
// documents, and the estimate/exact count split.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/dbsmedya/mongolens/internal/config"
	"github.com/dbsmedya/mongolens/internal/logger"
	"github.com/dbsmedya/mongolens/internal/store"
)

const defaultConnectRetries = 3

// Store is a MongoDB-backed implementation of store.Store.
type Store struct {
	client  *driver.Client
	db      *driver.Database
	timeout time.Duration
	log     *logger.Logger
}

// Connect establishes a verified client with bounded retry and exponential
// backoff, then binds it to the configured database.
func Connect(ctx context.Context, cfg *config.StoreConfig, log *logger.Logger) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store config is required")
	}
	if log == nil {
		log = logger.NewNop()
	}

	maxRetries := cfg.ConnectRetries
	if maxRetries <= 0 {
		maxRetries = defaultConnectRetries
	}
	timeout := cfg.Timeout()
	backoff := time.Second

	var client *driver.Client
	var err error
	for i := 0; i < maxRetries; i++ {
		client, err = connect(ctx, cfg, timeout)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, timeout)
			pingErr := client.Ping(pingCtx, readpref.Primary())
			cancel()
			if pingErr == nil {
				log.Infow("connected to store", "database", cfg.Database, "attempt", i+1)
				return &Store{
					client:  client,
					db:      client.Database(cfg.Database),
					timeout: timeout,
					log:     log,
				}, nil
			}
			_ = client.Disconnect(ctx)
			err = pingErr
		}

		if i < maxRetries-1 {
			log.Warnw("store connection failed, retrying", "attempt", i+1, "backoff", backoff, "error", err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}

	return nil, &store.UnavailableError{
		Op:  "connect",
		Err: fmt.Errorf("failed after %d retries: %w", maxRetries, err),
	}
}

func connect(ctx context.Context, cfg *config.StoreConfig, timeout time.Duration) (*driver.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxPoolSize))
	}
	return driver.Connect(ctx, opts)
}

// ListCollections returns the database's collection names, sorted.
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, s.wrapErr("list collections", "", err)
	}
	sort.Strings(names)
	return names, nil
}

// CollectionExists reports whether the named collection exists.
func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	names, err := s.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return false, s.wrapErr("collection exists", name, err)
	}
	return len(names) > 0, nil
}

// Sample draws up to size documents with a $sample pipeline. The server
// returns an empty batch for unknown namespaces, so existence is checked
// first to keep the missing-collection contract.
func (s *Store) Sample(ctx context.Context, name string, size int) ([]store.Document, error) {
	exists, err := s.CollectionExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &store.NotFoundError{Collection: name}
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	pipeline := driver.Pipeline{
		bson.D{{Key: "$sample", Value: bson.D{{Key: "size", Value: size}}}},
	}
	cursor, err := s.db.Collection(name).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, s.wrapErr("sample", name, err)
	}
	return decodeAll(ctx, cursor, name)
}

// EstimatedCount returns the metadata-based document count.
func (s *Store) EstimatedCount(ctx context.Context, name string) (int64, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	n, err := s.db.Collection(name).EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, s.wrapErr("estimated count", name, err)
	}
	return n, nil
}

// Count returns the exact number of documents matching the conditions and
// search.
func (s *Store) Count(ctx context.Context, name string, conditions []store.Condition, search *store.SearchSpec) (int64, error) {
	filter, err := buildFilter(conditions, search)
	if err != nil {
		return 0, err
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	n, err := s.db.Collection(name).CountDocuments(ctx, filter)
	if err != nil {
		return 0, s.wrapErr("count", name, err)
	}
	return n, nil
}

// Find translates the request into a find command with filter, sort, skip
// and limit.
func (s *Store) Find(ctx context.Context, req store.FindRequest) ([]store.Document, error) {
	filter, err := buildFilter(req.Conditions, req.Search)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	opts := options.Find()
	if len(req.Sort) > 0 {
		opts.SetSort(buildSort(req.Sort))
	}
	if req.Skip > 0 {
		opts.SetSkip(req.Skip)
	}
	if req.Limit > 0 {
		opts.SetLimit(req.Limit)
	}

	cursor, err := s.db.Collection(req.Collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, s.wrapErr("find", req.Collection, err)
	}
	return decodeAll(ctx, cursor, req.Collection)
}

type indexSpec struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique bool   `bson:"unique"`
}

// ListIndexes returns the collection's index metadata.
func (s *Store) ListIndexes(ctx context.Context, name string) ([]store.IndexInfo, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	cursor, err := s.db.Collection(name).Indexes().List(ctx)
	if err != nil {
		return nil, s.wrapErr("list indexes", name, err)
	}
	var specs []indexSpec
	if err := cursor.All(ctx, &specs); err != nil {
		return nil, s.wrapErr("list indexes", name, err)
	}

	out := make([]store.IndexInfo, 0, len(specs))
	for _, spec := range specs {
		info := store.IndexInfo{Name: spec.Name, Unique: spec.Unique}
		for _, key := range spec.Key {
			info.Fields = append(info.Fields, key.Key)
		}
		out = append(out, info)
	}
	return out, nil
}

// Ping verifies the deployment is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return s.wrapErr("ping", "", err)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return s.wrapErr("close", "", err)
	}
	return nil
}

func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func decodeAll(ctx context.Context, cursor *driver.Cursor, collection string) ([]store.Document, error) {
	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, &store.UnavailableError{Op: "decode " + collection, Err: err}
	}
	docs := make([]store.Document, len(raw))
	for i, doc := range raw {
		docs[i] = store.Document(doc)
	}
	return docs, nil
}

// wrapErr maps driver failures onto the store error taxonomy.
func (s *Store) wrapErr(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded) || driver.IsTimeout(err):
		return &store.TimeoutError{Op: op, Err: err}
	case driver.IsNetworkError(err):
		return &store.UnavailableError{Op: op, Err: err}
	}

	var cmdErr driver.CommandError
	if errors.As(err, &cmdErr) && (cmdErr.Code == 26 || cmdErr.Name == "NamespaceNotFound") {
		return &store.NotFoundError{Collection: collection}
	}
	return fmt.Errorf("%s: %w", op, err)
}
