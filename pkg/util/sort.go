package util

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// sortKeys maps the public sort prefix to its stored field.
var sortKeys = map[string]string{
	"created_at":   "created_at",
	"submitted_at": "submitted_at",
	"updated_at":   "updated_at",
	"total_amount": "total_amount",
	"rating":       "rating",
}

// GetSortBson turns a "<field>_asc|_desc" query value into a sort document.
// Unknown fields fall back to created_at, newest first.
func GetSortBson(sort string) bson.D {
	value := -1
	if strings.HasSuffix(sort, "_asc") {
		value = 1
	}

	field := strings.TrimSuffix(strings.TrimSuffix(sort, "_asc"), "_desc")
	key, ok := sortKeys[field]
	if !ok {
		key = "created_at"
		value = -1
	}

	return bson.D{{Key: key, Value: value}, {Key: "_id", Value: value}}
}
