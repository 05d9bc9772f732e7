package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/trezcool/courseware/core/course"
)

type updateCommand struct {
	Update  string `bson:"update"`
	Updates []struct {
		Q bson.M `bson:"q"`
		U bson.M `bson:"u"`
	} `bson:"updates"`
}

func lastUpdate(mt *mtest.T) updateCommand {
	evt := mt.GetStartedEvent()
	require.NotNil(mt, evt)
	require.Equal(mt, "update", evt.CommandName)

	var cmd updateCommand
	require.NoError(mt, bson.Unmarshal(evt.Command, &cmd))
	require.Len(mt, cmd.Updates, 1)
	return cmd
}

func Test_courseRepository_enrollment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	matched := func(n int) bson.D {
		return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}, bson.E{Key: "nModified", Value: n})
	}

	tests := []struct {
		name       string
		call       func(repo course.Repository) error
		response   bson.D
		wantUpdate bson.M
		wantErr    error
	}{
		{
			name: "add students",
			call: func(repo course.Repository) error {
				return repo.AddStudents(ctx, "c1", []string{"s1", "s2"})
			},
			response:   matched(1),
			wantUpdate: bson.M{"$addToSet": bson.M{"students": bson.M{"$each": bson.A{"s1", "s2"}}}},
		},
		{
			name: "add students, unknown course",
			call: func(repo course.Repository) error {
				return repo.AddStudents(ctx, "c1", []string{"s1"})
			},
			response:   matched(0),
			wantUpdate: bson.M{"$addToSet": bson.M{"students": bson.M{"$each": bson.A{"s1"}}}},
			wantErr:    course.ErrNotFound,
		},
		{
			name: "remove students",
			call: func(repo course.Repository) error {
				return repo.RemoveStudents(ctx, "c1", []string{"s1", "s2"})
			},
			response:   matched(1),
			wantUpdate: bson.M{"$pull": bson.M{"students": bson.M{"$in": bson.A{"s1", "s2"}}}},
		},
		{
			name: "remove students, unknown course",
			call: func(repo course.Repository) error {
				return repo.RemoveStudents(ctx, "c1", []string{"s1"})
			},
			response:   matched(0),
			wantUpdate: bson.M{"$pull": bson.M{"students": bson.M{"$in": bson.A{"s1"}}}},
			wantErr:    course.ErrNotFound,
		},
	}
	for _, tt := range tests {
		mt.Run(tt.name, func(mt *mtest.T) {
			repo := &courseRepository{coll: mt.Coll}
			mt.AddMockResponses(tt.response)

			err := tt.call(repo)
			if tt.wantErr != nil {
				assert.Equal(mt, tt.wantErr, err)
			} else {
				assert.NoError(mt, err)
			}

			cmd := lastUpdate(mt)
			assert.Equal(mt, mt.Coll.Name(), cmd.Update)
			assert.Equal(mt, bson.M{"_id": "c1"}, cmd.Updates[0].Q)
			assert.Equal(mt, tt.wantUpdate, cmd.Updates[0].U)
		})
	}

	mt.Run("server error", func(mt *mtest.T) {
		repo := &courseRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad update",
		}))

		err := repo.AddStudents(ctx, "c1", []string{"s1"})
		assert.Error(mt, err)
		assert.NotEqual(mt, course.ErrNotFound, err)
	})
}

func Test_courseRepository_GetCourse(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("found", func(mt *mtest.T) {
		repo := &courseRepository{coll: mt.Coll}
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "c1"},
			{Key: "subject", Value: "CS"},
			{Key: "number", Value: 101},
			{Key: "title", Value: "Intro"},
			{Key: "term", Value: "fall-2024"},
			{Key: "instructorId", Value: "i1"},
			{Key: "students", Value: bson.A{"s1"}},
		}))

		got, err := repo.GetCourse(ctx, "c1")
		if assert.NoError(mt, err) {
			assert.Equal(mt, course.Course{
				ID:           "c1",
				Subject:      "CS",
				Number:       101,
				Title:        "Intro",
				Term:         "fall-2024",
				InstructorID: "i1",
				Students:     []string{"s1"},
			}, got)
		}
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := &courseRepository{coll: mt.Coll}
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetCourse(ctx, "c1")
		assert.Equal(mt, course.ErrNotFound, err)
	})
}
