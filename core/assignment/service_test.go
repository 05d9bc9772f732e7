package assignment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/courseware/core"
	"github.com/trezcool/courseware/core/assignment"
	inmemdb "github.com/trezcool/courseware/storage/database/inmem"
	"github.com/trezcool/courseware/tests"
)

func TestService(t *testing.T) {
	repo := inmemdb.NewAssignmentRepository(inmemdb.Open())
	svc := assignment.NewService(repo)
	ctx := context.Background()

	due := time.Date(2024, 10, 1, 23, 59, 0, 0, time.UTC)
	later := testutil.CreateAssignment(t, repo, "c1", "Final", 100, due.Add(48*time.Hour))
	other := testutil.CreateAssignment(t, repo, "c2", "Other", 10, due)

	a, err := svc.Create(ctx, assignment.NewAssignment{CourseID: "c1", Title: "HW1", Points: 10, Due: due})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)

	// ordered by due date
	as, err := svc.QueryByCourse(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, later.ID}, []string{as[0].ID, as[1].ID})

	as, err = svc.QueryByCourse(ctx, "none")
	require.NoError(t, err)
	assert.Equal(t, []assignment.Assignment{}, as)

	points := 20
	updated, err := svc.Update(ctx, a.ID, assignment.UpdateAssignment{Points: &points})
	require.NoError(t, err)
	assert.Equal(t, 20, updated.Points)
	assert.Equal(t, "HW1", updated.Title)

	require.NoError(t, svc.Delete(ctx, a.ID))
	_, err = svc.Get(ctx, a.ID)
	assert.True(t, core.IsNotFound(err))
	assert.True(t, core.IsNotFound(svc.Delete(ctx, a.ID)))

	_, err = svc.Get(ctx, other.ID)
	assert.NoError(t, err)
}
