package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/courseware/core/assignment"
)

type assignmentRepository struct {
	db *assignmentTable
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db.assignment}
}

func (repo *assignmentRepository) CreateAssignment(_ context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if a.ID == "" {
		a.ID = newID()
	}
	repo.db.table[a.ID] = &a
	return a, nil
}

func (repo *assignmentRepository) GetAssignment(_ context.Context, id string) (assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.table[id]; ok {
		return *a, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) QueryAssignmentsByCourse(_ context.Context, courseID string) ([]assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	as := make([]assignment.Assignment, 0)
	for _, id := range sortedKeys(repo.db.table) {
		if a := repo.db.table[id]; a.CourseID == courseID {
			as = append(as, *a)
		}
	}
	sort.SliceStable(as, func(i, j int) bool { return as[i].Due.Before(as[j].Due) })
	return as, nil
}

func (repo *assignmentRepository) UpdateAssignment(_ context.Context, id string, ua assignment.UpdateAssignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a, ok := repo.db.table[id]
	if !ok {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	if ua.Title != nil {
		a.Title = *ua.Title
	}
	if ua.Points != nil {
		a.Points = *ua.Points
	}
	if ua.Due != nil {
		a.Due = *ua.Due
	}
	return *a, nil
}

func (repo *assignmentRepository) DeleteAssignment(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return assignment.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
