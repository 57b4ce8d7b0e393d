package indexer

import (
	"context"
	"time"

	"agrimarket-api-io/api/pkg/util"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (m *Manager) Create(ctx context.Context) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, m.options.Timeout)
	defer cancel()

	start := time.Now()
	result := &Result{Failures: []FailureDetail{}}

	for _, def := range m.indexes {
		log := util.WithFields(logrus.Fields{"collection": def.Collection, "index": def.Name()})

		if m.options.SkipIfExists {
			exists, err := m.indexExists(ctx, def.Collection, def.Name())
			if err == nil && exists {
				log.Debug("index already exists, skipping")
				result.SkippedCount++
				continue
			}
		}

		indexName, err := m.db.Collection(def.Collection).Indexes().CreateOne(ctx, def.Index)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				log.Warn("cannot create unique index due to duplicate data")
			} else {
				log.WithError(err).Error("failed to create index")
			}

			result.FailedCount++
			result.Failures = append(result.Failures, FailureDetail{
				Collection: def.Collection,
				IndexName:  def.Name(),
				Error:      err.Error(),
			})

			if !m.options.ContinueOnError {
				result.Duration = time.Since(start)
				return result, errors.Wrapf(err, "create index on %s", def.Collection)
			}
			continue
		}

		log.WithField("created", indexName).Info("created index")
		result.SuccessCount++
	}

	result.Duration = time.Since(start)

	if result.FailedCount > 0 {
		return result, errors.Errorf("%d indexes failed to create", result.FailedCount)
	}

	return result, nil
}

// Drop removes every non-_id index from the given collections, or from all
// collections with definitions when none are named.
func (m *Manager) Drop(ctx context.Context, collections ...string) error {
	ctx, cancel := context.WithTimeout(ctx, m.options.Timeout)
	defer cancel()

	if len(collections) == 0 {
		collections = m.collections()
	}

	for _, collName := range collections {
		if _, err := m.db.Collection(collName).Indexes().DropAll(ctx); err != nil {
			if !m.options.ContinueOnError {
				return errors.Wrapf(err, "drop indexes for %s", collName)
			}
			util.WithFields(logrus.Fields{"collection": collName}).WithError(err).Error("failed to drop indexes")
			continue
		}
		util.WithFields(logrus.Fields{"collection": collName}).Info("dropped all indexes")
	}

	return nil
}

func (m *Manager) List(ctx context.Context, collection string) ([]bson.M, error) {
	cursor, err := m.db.Collection(collection).Indexes().List(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "list indexes for %s", collection)
	}
	defer cursor.Close(ctx)

	var indexes []bson.M
	if err = cursor.All(ctx, &indexes); err != nil {
		return nil, errors.Wrap(err, "decode indexes")
	}

	return indexes, nil
}

func (m *Manager) indexExists(ctx context.Context, collection, indexName string) (bool, error) {
	if indexName == "" {
		return false, nil
	}

	indexes, err := m.List(ctx, collection)
	if err != nil {
		return false, err
	}

	for _, idx := range indexes {
		if name, ok := idx["name"].(string); ok && name == indexName {
			return true, nil
		}
	}

	return false, nil
}

func (m *Manager) LoadFromDefinitions(definitions []IndexDefinition) *Manager {
	m.indexes = append(m.indexes, definitions...)
	return m
}

func (m *Manager) Clear() *Manager {
	m.indexes = []IndexDefinition{}
	return m
}
