package services

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// TransactionCallback defines the callback function for database transactions
type TransactionCallback func(ctx mongo.SessionContext) (any, error)

// ExecuteTransaction runs callback inside a majority-acknowledged transaction.
// WithTransaction commits on success and retries transient errors.
func ExecuteTransaction(ctx context.Context, client *mongo.Client, callback TransactionCallback) (any, error) {
	wc := writeconcern.New(writeconcern.WMajority())
	txnOptions := options.Transaction().
		SetWriteConcern(wc).
		SetReadConcern(readconcern.Snapshot())

	session, err := client.StartSession()
	if err != nil {
		return nil, errors.Wrap(err, "start session")
	}
	defer session.EndSession(ctx)

	return session.WithTransaction(ctx, callback, txnOptions)
}

// compareAndSwap replaces the document only while field still holds
// expected. A miss means another writer got there first.
func compareAndSwap(ctx context.Context, collection *mongo.Collection, id any, field string, expected any, set bson.M) error {
	filter := bson.M{"_id": id, field: expected}
	res, err := collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return classify(ErrConflict, errors.Errorf("%s changed concurrently", field))
	}
	return nil
}

// countAndFind runs a paginated find together with the matching total.
func countAndFind[T any](ctx context.Context, collection *mongo.Collection, filter any, opts *options.FindOptions) ([]T, int64, error) {
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count documents")
	}

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "find documents")
	}
	defer cursor.Close(ctx)

	results := make([]T, 0)
	if err := cursor.All(ctx, &results); err != nil {
		return nil, 0, errors.Wrap(err, "decode documents")
	}
	return results, count, nil
}
