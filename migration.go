package indexer

import (
	"context"
	"sort"
	"time"

	"agrimarket-api-io/api/pkg/util"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const migrationCollection = "_migrations"

type MigrationManager struct {
	db         *mongo.Database
	migrations []Migration
}

func NewMigrationManager(db *mongo.Database) *MigrationManager {
	return &MigrationManager{
		db:         db,
		migrations: []Migration{},
	}
}

func (mm *MigrationManager) AddMigration(migration Migration) *MigrationManager {
	mm.migrations = append(mm.migrations, migration)
	return mm
}

// ordered returns a copy of the migrations sorted by version.
func (mm *MigrationManager) ordered(desc bool) []Migration {
	out := append([]Migration(nil), mm.migrations...)
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].Version > out[j].Version
		}
		return out[i].Version < out[j].Version
	})
	return out
}

// Run applies every migration that has not yet succeeded. A failed attempt
// is recorded and stops the run.
func (mm *MigrationManager) Run(ctx context.Context) error {
	coll := mm.db.Collection(migrationCollection)

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "version", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "create migration index")
	}

	for _, migration := range mm.ordered(false) {
		log := util.WithFields(logrus.Fields{"version": migration.Version})

		applied, err := mm.isApplied(ctx, migration.Version)
		if err != nil {
			return errors.Wrapf(err, "check migration status for %s", migration.Version)
		}
		if applied {
			log.Debug("migration already applied, skipping")
			continue
		}

		log.WithField("description", migration.Description).Info("running migration")

		start := time.Now()
		upErr := migration.Up(ctx, mm.db)
		duration := time.Since(start)

		status := MigrationStatus{
			Version:   migration.Version,
			AppliedAt: time.Now().UTC(),
			Success:   upErr == nil,
		}
		if upErr != nil {
			status.Error = upErr.Error()
		}

		// A retried migration replaces its earlier failed record.
		_, saveErr := coll.UpdateOne(ctx,
			bson.M{"version": migration.Version},
			bson.M{"$set": status},
			options.Update().SetUpsert(true),
		)

		if upErr != nil {
			log.WithError(upErr).WithField("duration", duration).Error("migration failed")
			if saveErr != nil {
				util.LogError("failed to save migration status", saveErr)
			}
			return errors.Wrapf(upErr, "migration %s failed", migration.Version)
		}
		if saveErr != nil {
			return errors.Wrap(saveErr, "save migration status")
		}

		log.WithField("duration", duration).Info("migration completed")
	}

	return nil
}

// Rollback reverts applied migrations newer than targetVersion, newest first.
func (mm *MigrationManager) Rollback(ctx context.Context, targetVersion string) error {
	coll := mm.db.Collection(migrationCollection)

	for _, migration := range mm.ordered(true) {
		if migration.Version <= targetVersion {
			break
		}

		applied, err := mm.isApplied(ctx, migration.Version)
		if err != nil {
			return errors.Wrapf(err, "check migration status for %s", migration.Version)
		}
		if !applied {
			continue
		}

		if migration.Down == nil {
			return errors.Errorf("migration %s does not support rollback", migration.Version)
		}

		util.WithFields(logrus.Fields{"version": migration.Version}).Info("rolling back migration")

		if err := migration.Down(ctx, mm.db); err != nil {
			return errors.Wrapf(err, "rollback of migration %s failed", migration.Version)
		}

		if _, err := coll.DeleteOne(ctx, bson.M{"version": migration.Version}); err != nil {
			return errors.Wrap(err, "remove migration status")
		}
	}

	return nil
}

func (mm *MigrationManager) Status(ctx context.Context) ([]MigrationStatus, error) {
	cursor, err := mm.db.Collection(migrationCollection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "version", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "query migration status")
	}
	defer cursor.Close(ctx)

	statuses := []MigrationStatus{}
	if err = cursor.All(ctx, &statuses); err != nil {
		return nil, errors.Wrap(err, "decode migration statuses")
	}

	return statuses, nil
}

func (mm *MigrationManager) isApplied(ctx context.Context, version string) (bool, error) {
	count, err := mm.db.Collection(migrationCollection).CountDocuments(ctx, bson.M{"version": version, "success": true})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
