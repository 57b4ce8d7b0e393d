package indexer

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type IndexDefinition struct {
	Collection string
	Index      mongo.IndexModel
}

// Name returns the explicit index name, or "" when the server picks one.
func (d IndexDefinition) Name() string {
	if d.Index.Options == nil || d.Index.Options.Name == nil {
		return ""
	}
	return *d.Index.Options.Name
}

type Manager struct {
	db      *mongo.Database
	indexes []IndexDefinition
	options *Options
}

type Options struct {
	Timeout         time.Duration
	ContinueOnError bool
	SkipIfExists    bool
}

type Result struct {
	SuccessCount int             `json:"successCount"`
	SkippedCount int             `json:"skippedCount"`
	FailedCount  int             `json:"failedCount"`
	Failures     []FailureDetail `json:"failures"`
	Duration     time.Duration   `json:"duration"`
}

type FailureDetail struct {
	Collection string `json:"collection"`
	IndexName  string `json:"indexName"`
	Error      string `json:"error"`
}

type IndexStats struct {
	Name     string    `json:"name"`
	Accesses int64     `json:"accesses"`
	Since    time.Time `json:"since"`
	Host     string    `json:"host"`
	Building bool      `json:"building"`
}

// Migration is a one-off data change recorded in the migrations collection.
// Versions sort lexically, so they are prefixed with a date.
type Migration struct {
	Version     string
	Description string
	Up          func(ctx context.Context, db *mongo.Database) error
	Down        func(ctx context.Context, db *mongo.Database) error
}

type MigrationStatus struct {
	Version   string    `bson:"version" json:"version"`
	AppliedAt time.Time `bson:"applied_at" json:"appliedAt"`
	Success   bool      `bson:"success" json:"success"`
	Error     string    `bson:"error,omitempty" json:"error,omitempty"`
}

func DefaultOptions() *Options {
	return &Options{
		Timeout:         60 * time.Second,
		ContinueOnError: true,
		SkipIfExists:    true,
	}
}

func NewManager(db *mongo.Database, opts ...*Options) *Manager {
	o := DefaultOptions()
	if len(opts) > 0 && opts[0] != nil {
		o = opts[0]
	}

	return &Manager{
		db:      db,
		indexes: []IndexDefinition{},
		options: o,
	}
}

func (m *Manager) Indexes() []IndexDefinition {
	return m.indexes
}

func (m *Manager) AddIndex(collection string, index mongo.IndexModel) *Manager {
	m.indexes = append(m.indexes, IndexDefinition{
		Collection: collection,
		Index:      index,
	})
	return m
}

// AddCompoundIndex adds an index over keys in order. A key prefixed with "-"
// is indexed descending.
func (m *Manager) AddCompoundIndex(collection string, keys []string, opts ...*options.IndexOptions) *Manager {
	doc := bson.D{}
	for _, key := range keys {
		if len(key) > 1 && key[0] == '-' {
			doc = append(doc, bson.E{Key: key[1:], Value: -1})
			continue
		}
		doc = append(doc, bson.E{Key: key, Value: 1})
	}

	indexOpts := options.Index()
	if len(opts) > 0 && opts[0] != nil {
		indexOpts = opts[0]
	}

	m.indexes = append(m.indexes, IndexDefinition{
		Collection: collection,
		Index: mongo.IndexModel{
			Keys:    doc,
			Options: indexOpts,
		},
	})
	return m
}

// AddTTLIndex expires documents once field is older than after. Zero expires
// them at the time stored in field.
func (m *Manager) AddTTLIndex(collection, field string, after time.Duration) *Manager {
	return m.AddIndex(collection, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetName(field + "_ttl").SetExpireAfterSeconds(int32(after.Seconds())),
	})
}

// collections returns the distinct collections that have definitions.
func (m *Manager) collections() []string {
	seen := make(map[string]bool)
	var out []string
	for _, def := range m.indexes {
		if !seen[def.Collection] {
			seen[def.Collection] = true
			out = append(out, def.Collection)
		}
	}
	return out
}
