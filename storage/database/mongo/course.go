package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/courseware/core/course"
)

type courseRepository struct {
	coll *mongo.Collection
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *mongo.Database) course.Repository {
	return &courseRepository{coll: db.Collection(coursesCollection)}
}

func courseFilter(filter course.QueryFilter) bson.M {
	f := bson.M{}
	if filter.Subject != "" {
		f["subject"] = filter.Subject
	}
	if filter.Number != 0 {
		f["number"] = filter.Number
	}
	if filter.Term != "" {
		f["term"] = filter.Term
	}
	return f
}

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	if c.ID == "" {
		c.ID = newID()
	}
	if c.Students == nil {
		c.Students = []string{}
	}
	if _, err := repo.coll.InsertOne(ctx, c); err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return c, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	var c course.Course
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "finding course")
	}
	return c, nil
}

func (repo *courseRepository) CountCourses(ctx context.Context, filter course.QueryFilter) (int64, error) {
	n, err := repo.coll.CountDocuments(ctx, courseFilter(filter))
	return n, errors.Wrap(err, "counting courses")
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter, offset, limit int) ([]course.Course, error) {
	opts := page(offset, limit).SetProjection(bson.M{"students": 0})
	cur, err := repo.coll.Find(ctx, courseFilter(filter), opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0)
	if err = cur.All(ctx, &courses); err != nil {
		return nil, errors.Wrap(err, "decoding courses")
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, id string, uc course.UpdateCourse) (course.Course, error) {
	set := bson.M{}
	if uc.Subject != nil {
		set["subject"] = *uc.Subject
	}
	if uc.Number != nil {
		set["number"] = *uc.Number
	}
	if uc.Title != nil {
		set["title"] = *uc.Title
	}
	if uc.Term != nil {
		set["term"] = *uc.Term
	}
	if uc.InstructorID != nil {
		set["instructorId"] = *uc.InstructorID
	}
	if len(set) == 0 {
		return repo.GetCourse(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c course.Course
	err := repo.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	return c, nil
}

func (repo *courseRepository) updateStudents(ctx context.Context, id string, update bson.M) error {
	res, err := repo.coll.UpdateByID(ctx, id, update)
	if err != nil {
		return errors.Wrap(err, "updating enrollment")
	}
	if res.MatchedCount == 0 {
		return course.ErrNotFound
	}
	return nil
}

func (repo *courseRepository) AddStudents(ctx context.Context, id string, studentIDs []string) error {
	return repo.updateStudents(ctx, id, bson.M{"$addToSet": bson.M{"students": bson.M{"$each": studentIDs}}})
}

func (repo *courseRepository) RemoveStudents(ctx context.Context, id string, studentIDs []string) error {
	return repo.updateStudents(ctx, id, bson.M{"$pull": bson.M{"students": bson.M{"$in": studentIDs}}})
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if res.DeletedCount == 0 {
		return course.ErrNotFound
	}
	return nil
}

func (repo *courseRepository) queryIDs(ctx context.Context, filter bson.M) ([]string, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetProjection(bson.M{"_id": 1})
	cur, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying course ids")
	}
	defer cur.Close(ctx)

	ids := make([]string, 0)
	for cur.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err = cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decoding course id")
		}
		ids = append(ids, doc.ID)
	}
	return ids, errors.Wrap(cur.Err(), "iterating course ids")
}

func (repo *courseRepository) QueryCourseIDsByInstructor(ctx context.Context, instructorID string) ([]string, error) {
	return repo.queryIDs(ctx, bson.M{"instructorId": instructorID})
}

func (repo *courseRepository) QueryCourseIDsByStudent(ctx context.Context, studentID string) ([]string, error) {
	return repo.queryIDs(ctx, bson.M{"students": studentID})
}
