package inmemdb

import (
	"context"

	"github.com/trezcool/courseware/core/submission"
)

type submissionRepository struct {
	db *submissionTable
}

var _ submission.Repository = (*submissionRepository)(nil)

func NewSubmissionRepository(db *DB) submission.Repository {
	return &submissionRepository{db: db.submission}
}

func matchSubmission(s *submission.Submission, filter submission.QueryFilter) bool {
	return (filter.AssignmentID == "" || s.AssignmentID == filter.AssignmentID) &&
		(filter.StudentID == "" || s.StudentID == filter.StudentID)
}

func (repo *submissionRepository) CreateSubmission(_ context.Context, s submission.Submission) (submission.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if s.ID == "" {
		s.ID = newID()
	}
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *submissionRepository) GetSubmission(_ context.Context, id string) (submission.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return *s, nil
	}
	return submission.Submission{}, submission.ErrNotFound
}

func (repo *submissionRepository) CountSubmissions(_ context.Context, filter submission.QueryFilter) (int64, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var n int64
	for _, s := range repo.db.table {
		if matchSubmission(s, filter) {
			n++
		}
	}
	return n, nil
}

func (repo *submissionRepository) QuerySubmissions(_ context.Context, filter submission.QueryFilter, offset, limit int) ([]submission.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subs := make([]submission.Submission, 0)
	for _, id := range sortedKeys(repo.db.table) {
		if s := repo.db.table[id]; matchSubmission(s, filter) {
			subs = append(subs, *s)
		}
	}
	return window(subs, offset, limit), nil
}

func (repo *submissionRepository) UpdateGrade(_ context.Context, id string, grade float64) (submission.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s, ok := repo.db.table[id]
	if !ok {
		return submission.Submission{}, submission.ErrNotFound
	}
	s.Grade = &grade
	return *s, nil
}

func (repo *submissionRepository) QueryFileIDsByAssignment(_ context.Context, assignmentID string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ids := make([]string, 0)
	for _, id := range sortedKeys(repo.db.table) {
		if s := repo.db.table[id]; s.AssignmentID == assignmentID && s.FileID != "" {
			ids = append(ids, s.FileID)
		}
	}
	return ids, nil
}

func (repo *submissionRepository) DeleteSubmissionsByAssignment(_ context.Context, assignmentID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for id, s := range repo.db.table {
		if s.AssignmentID == assignmentID {
			delete(repo.db.table, id)
		}
	}
	return nil
}
