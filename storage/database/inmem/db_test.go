package inmemdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/courseware/core"
	"github.com/trezcool/courseware/core/course"
	"github.com/trezcool/courseware/core/submission"
	"github.com/trezcool/courseware/core/user"
)

func Test_window(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	tests := []struct {
		name          string
		offset, limit int
		want          []int
	}{
		{name: "first page", offset: 0, limit: 2, want: []int{1, 2}},
		{name: "last partial page", offset: 4, limit: 2, want: []int{5}},
		{name: "past the end", offset: 5, limit: 2, want: []int{}},
		{name: "no limit", offset: 1, limit: 0, want: []int{2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, window(items, tt.offset, tt.limit))
		})
	}
}

func Test_courseRepository_students(t *testing.T) {
	db := Open()
	repo := NewCourseRepository(db)
	ctx := context.Background()

	c, err := repo.CreateCourse(ctx, course.Course{Subject: "CS", Number: 101, Title: "Intro", Term: "F24", InstructorID: "i1"})
	require.NoError(t, err)
	assert.Equal(t, []string{}, c.Students)

	require.NoError(t, repo.AddStudents(ctx, c.ID, []string{"s1", "s2"}))
	require.NoError(t, repo.AddStudents(ctx, c.ID, []string{"s2", "s3"}))
	got, err := repo.GetCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2", "s3"}, got.Students)

	// copies never alias the stored course
	got.Students[0] = "mutated"
	got, err = repo.GetCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "s1", got.Students[0])

	require.NoError(t, repo.RemoveStudents(ctx, c.ID, []string{"s1", "unknown"}))
	got, err = repo.GetCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"s2", "s3"}, got.Students)

	ids, err := repo.QueryCourseIDsByStudent(ctx, "s3")
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, ids)

	courses, err := repo.QueryCourses(ctx, course.QueryFilter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Nil(t, courses[0].Students)

	assert.True(t, core.IsNotFound(repo.AddStudents(ctx, "unknown", []string{"s1"})))
	assert.True(t, core.IsNotFound(repo.RemoveStudents(ctx, "unknown", []string{"s1"})))
	assert.True(t, core.IsNotFound(repo.DeleteCourse(ctx, "unknown")))
}

func Test_userRepository_uniqueEmail(t *testing.T) {
	repo := NewUserRepository(Open())
	ctx := context.Background()

	ada, err := repo.CreateUser(ctx, user.User{Name: "Ada", Email: "ada@example.com", Role: user.RoleStudent})
	require.NoError(t, err)
	_, err = repo.CreateUser(ctx, user.User{Name: "Imposter", Email: "ada@example.com", Role: user.RoleStudent})
	assert.Equal(t, user.ErrEmailExists, err)

	alan, err := repo.CreateUser(ctx, user.User{Name: "Alan", Email: "alan@example.com", Role: user.RoleStudent})
	require.NoError(t, err)
	alan.Email = ada.Email
	_, err = repo.UpdateUser(ctx, alan)
	assert.Equal(t, user.ErrEmailExists, err)

	users, err := repo.QueryUsersByIDs(ctx, []string{alan.ID, "unknown", ada.ID})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, ada.ID, users[0].ID)
}

func Test_submissionRepository_deleteByAssignment(t *testing.T) {
	repo := NewSubmissionRepository(Open())
	ctx := context.Background()

	for _, s := range []submission.Submission{
		{AssignmentID: "a1", StudentID: "s1", FileID: "f1"},
		{AssignmentID: "a1", StudentID: "s2", FileID: "f2"},
		{AssignmentID: "a2", StudentID: "s1", FileID: "f3"},
	} {
		_, err := repo.CreateSubmission(ctx, s)
		require.NoError(t, err)
	}

	fileIDs, err := repo.QueryFileIDsByAssignment(ctx, "a1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"f1", "f2"}, fileIDs)

	require.NoError(t, repo.DeleteSubmissionsByAssignment(ctx, "a1"))
	n, err := repo.CountSubmissions(ctx, submission.QueryFilter{AssignmentID: "a1"})
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = repo.CountSubmissions(ctx, submission.QueryFilter{StudentID: "s1"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
