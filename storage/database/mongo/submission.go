package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/courseware/core/submission"
)

type submissionRepository struct {
	coll *mongo.Collection
}

var _ submission.Repository = (*submissionRepository)(nil)

func NewSubmissionRepository(db *mongo.Database) submission.Repository {
	return &submissionRepository{coll: db.Collection(submissionsCollection)}
}

func submissionFilter(filter submission.QueryFilter) bson.M {
	f := bson.M{"assignmentId": filter.AssignmentID}
	if filter.StudentID != "" {
		f["studentId"] = filter.StudentID
	}
	return f
}

func (repo *submissionRepository) CreateSubmission(ctx context.Context, s submission.Submission) (submission.Submission, error) {
	if s.ID == "" {
		s.ID = newID()
	}
	if _, err := repo.coll.InsertOne(ctx, s); err != nil {
		return submission.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return s, nil
}

func (repo *submissionRepository) GetSubmission(ctx context.Context, id string) (submission.Submission, error) {
	var s submission.Submission
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return submission.Submission{}, submission.ErrNotFound
		}
		return submission.Submission{}, errors.Wrap(err, "finding submission")
	}
	return s, nil
}

func (repo *submissionRepository) CountSubmissions(ctx context.Context, filter submission.QueryFilter) (int64, error) {
	n, err := repo.coll.CountDocuments(ctx, submissionFilter(filter))
	return n, errors.Wrap(err, "counting submissions")
}

func (repo *submissionRepository) QuerySubmissions(ctx context.Context, filter submission.QueryFilter, offset, limit int) ([]submission.Submission, error) {
	cur, err := repo.coll.Find(ctx, submissionFilter(filter), page(offset, limit))
	if err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	subs := make([]submission.Submission, 0)
	if err = cur.All(ctx, &subs); err != nil {
		return nil, errors.Wrap(err, "decoding submissions")
	}
	return subs, nil
}

func (repo *submissionRepository) UpdateGrade(ctx context.Context, id string, grade float64) (submission.Submission, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var s submission.Submission
	err := repo.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"grade": grade}}, opts).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return submission.Submission{}, submission.ErrNotFound
		}
		return submission.Submission{}, errors.Wrap(err, "grading submission")
	}
	return s, nil
}

func (repo *submissionRepository) QueryFileIDsByAssignment(ctx context.Context, assignmentID string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"fileId": 1})
	cur, err := repo.coll.Find(ctx, bson.M{"assignmentId": assignmentID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying submission files")
	}
	defer cur.Close(ctx)

	ids := make([]string, 0)
	for cur.Next(ctx) {
		var doc struct {
			FileID string `bson:"fileId"`
		}
		if err = cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decoding submission file")
		}
		if doc.FileID != "" {
			ids = append(ids, doc.FileID)
		}
	}
	return ids, errors.Wrap(cur.Err(), "iterating submission files")
}

func (repo *submissionRepository) DeleteSubmissionsByAssignment(ctx context.Context, assignmentID string) error {
	_, err := repo.coll.DeleteMany(ctx, bson.M{"assignmentId": assignmentID})
	return errors.Wrap(err, "deleting submissions")
}
