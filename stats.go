package indexer

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func (m *Manager) Stats(ctx context.Context, collection string) ([]IndexStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$indexStats", Value: bson.D{}}},
	}

	cursor, err := m.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "get index stats")
	}
	defer cursor.Close(ctx)

	var rawStats []bson.M
	if err = cursor.All(ctx, &rawStats); err != nil {
		return nil, errors.Wrap(err, "decode index stats")
	}

	stats := make([]IndexStats, 0, len(rawStats))
	for _, raw := range rawStats {
		stats = append(stats, decodeIndexStats(raw))
	}
	return stats, nil
}

// decodeIndexStats reads one $indexStats document.
func decodeIndexStats(raw bson.M) IndexStats {
	var stat IndexStats

	stat.Name, _ = raw["name"].(string)
	stat.Host, _ = raw["host"].(string)
	stat.Building, _ = raw["building"].(bool)

	if accesses, ok := raw["accesses"].(bson.M); ok {
		switch ops := accesses["ops"].(type) {
		case int64:
			stat.Accesses = ops
		case int32:
			stat.Accesses = int64(ops)
		}
		if since, ok := accesses["since"].(primitive.DateTime); ok {
			stat.Since = since.Time().UTC()
		}
	}

	return stat
}

func (m *Manager) StatsAll(ctx context.Context) (map[string][]IndexStats, error) {
	ctx, cancel := context.WithTimeout(ctx, m.options.Timeout)
	defer cancel()

	results := make(map[string][]IndexStats)
	for _, collName := range m.collections() {
		stats, err := m.Stats(ctx, collName)
		if err != nil {
			if m.options.ContinueOnError {
				results[collName] = []IndexStats{}
				continue
			}
			return nil, errors.Wrapf(err, "stats for %s", collName)
		}
		results[collName] = stats
	}

	return results, nil
}
