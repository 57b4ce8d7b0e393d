package indexer

import (
	"context"

	"agrimarket-api-io/api/internal/common"
	"agrimarket-api-io/api/pkg/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var vendorCollections = []string{common.FarmerCollection, common.DeliveryAgentCollection}

var notificationPriorities = []models.NotificationPriority{
	models.NotificationPriorityLow,
	models.NotificationPriorityMedium,
	models.NotificationPriorityHigh,
	models.NotificationPriorityUrgent,
}

// missingVersion matches profiles written before application_version existed.
var missingVersion = bson.M{"application_version": bson.M{"$exists": false}}

// Migrations returns the data migrations in the order they were written.
func Migrations() []Migration {
	return []Migration{
		{
			Version:     "20240101_application_version",
			Description: "backfill application_version=1 on vendor profiles",
			Up: func(ctx context.Context, db *mongo.Database) error {
				for _, name := range vendorCollections {
					if _, err := db.Collection(name).UpdateMany(ctx, missingVersion,
						bson.M{"$set": bson.M{"application_version": 1}}); err != nil {
						return errors.Wrapf(err, "backfill %s", name)
					}
				}
				return nil
			},
			// Down is a no-op: backfilled and genuine version 1 rows are
			// indistinguishable.
			Down: func(context.Context, *mongo.Database) error { return nil },
		},
		{
			Version:     "20240102_rating_defaults",
			Description: "default rating and rating_count to 0 on vendor profiles",
			Up: func(ctx context.Context, db *mongo.Database) error {
				for _, name := range vendorCollections {
					coll := db.Collection(name)
					if _, err := coll.UpdateMany(ctx, bson.M{"rating": bson.M{"$exists": false}},
						bson.M{"$set": bson.M{"rating": 0}}); err != nil {
						return errors.Wrapf(err, "default rating on %s", name)
					}
					if _, err := coll.UpdateMany(ctx, bson.M{"rating_count": bson.M{"$exists": false}},
						bson.M{"$set": bson.M{"rating_count": 0}}); err != nil {
						return errors.Wrapf(err, "default rating_count on %s", name)
					}
				}
				return nil
			},
		},
		{
			Version:     "20240103_notification_priority_weight",
			Description: "derive priority_weight from priority on notifications",
			Up: func(ctx context.Context, db *mongo.Database) error {
				coll := db.Collection(common.UserNotificationCollection)
				for _, p := range notificationPriorities {
					if _, err := coll.UpdateMany(ctx,
						bson.M{"priority": p, "priority_weight": bson.M{"$exists": false}},
						bson.M{"$set": bson.M{"priority_weight": p.GetPriorityWeight()}}); err != nil {
						return errors.Wrapf(err, "weight %s notifications", p)
					}
				}
				return nil
			},
			Down: func(ctx context.Context, db *mongo.Database) error {
				_, err := db.Collection(common.UserNotificationCollection).UpdateMany(ctx,
					bson.M{}, bson.M{"$unset": bson.M{"priority_weight": ""}})
				return errors.Wrap(err, "unset priority_weight")
			},
		},
	}
}

// LoadDefaults registers Migrations on the manager.
func (mm *MigrationManager) LoadDefaults() *MigrationManager {
	for _, m := range Migrations() {
		mm.AddMigration(m)
	}
	return mm
}
