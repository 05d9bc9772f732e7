package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/courseware/core/assignment"
)

type assignmentRepository struct {
	coll *mongo.Collection
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *mongo.Database) assignment.Repository {
	return &assignmentRepository{coll: db.Collection(assignmentsCollection)}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	if a.ID == "" {
		a.ID = newID()
	}
	if _, err := repo.coll.InsertOne(ctx, a); err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return a, nil
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, id string) (assignment.Assignment, error) {
	var a assignment.Assignment
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "finding assignment")
	}
	return a, nil
}

func (repo *assignmentRepository) QueryAssignmentsByCourse(ctx context.Context, courseID string) ([]assignment.Assignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "due", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := repo.coll.Find(ctx, bson.M{"courseId": courseID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	assignments := make([]assignment.Assignment, 0)
	if err = cur.All(ctx, &assignments); err != nil {
		return nil, errors.Wrap(err, "decoding assignments")
	}
	return assignments, nil
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, id string, ua assignment.UpdateAssignment) (assignment.Assignment, error) {
	set := bson.M{}
	if ua.Title != nil {
		set["title"] = *ua.Title
	}
	if ua.Points != nil {
		set["points"] = *ua.Points
	}
	if ua.Due != nil {
		set["due"] = *ua.Due
	}
	if len(set) == 0 {
		return repo.GetAssignment(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a assignment.Assignment
	err := repo.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	return a, nil
}

func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id string) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	if res.DeletedCount == 0 {
		return assignment.ErrNotFound
	}
	return nil
}
