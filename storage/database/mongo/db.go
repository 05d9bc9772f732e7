// Package mongodb implements the repositories on top of MongoDB.
package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/trezcool/courseware/core"
)

const (
	usersCollection       = "users"
	coursesCollection     = "courses"
	assignmentsCollection = "assignments"
	submissionsCollection = "submissions"
)

// Open connects to MongoDB, waits for it to be ready and makes sure indexes exist.
func Open(ctx context.Context, conf *core.Config) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(conf.Mongo.URI).
		SetConnectTimeout(conf.Mongo.ConnectTimeout).
		SetAppName(conf.AppName)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, errors.Wrap(err, "connecting to mongo")
	}
	if err = ping(ctx, client); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	db := client.Database(conf.Mongo.Database)
	if err = EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, client *mongo.Client) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = client.Ping(ctx, readpref.Primary())
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping cancelled")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// EnsureIndexes creates the indexes the repositories rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		coursesCollection: {
			{Keys: bson.D{{Key: "instructorId", Value: 1}}},
			{Keys: bson.D{{Key: "students", Value: 1}}},
			{Keys: bson.D{{Key: "subject", Value: 1}, {Key: "number", Value: 1}, {Key: "term", Value: 1}}},
		},
		assignmentsCollection: {
			{Keys: bson.D{{Key: "courseId", Value: 1}, {Key: "due", Value: 1}}},
		},
		submissionsCollection: {
			{Keys: bson.D{{Key: "assignmentId", Value: 1}, {Key: "studentId", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", coll)
		}
	}
	return nil
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

// page returns find options for one sorted window of a collection.
func page(offset, limit int) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}
