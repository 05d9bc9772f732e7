package assignment

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/courseware/core"
)

var (
	// errors
	ErrNotFound = core.NotFoundError{Resource: "assignment"}
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		GetAssignment(ctx context.Context, id string) (Assignment, error)
		// QueryAssignmentsByCourse returns the course's assignments ordered by due date.
		QueryAssignmentsByCourse(ctx context.Context, courseID string) ([]Assignment, error)
		UpdateAssignment(ctx context.Context, id string, ua UpdateAssignment) (Assignment, error)
		DeleteAssignment(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, na NewAssignment) (Assignment, error)
		Get(ctx context.Context, id string) (Assignment, error)
		QueryByCourse(ctx context.Context, courseID string) ([]Assignment, error)
		Update(ctx context.Context, id string, ua UpdateAssignment) (Assignment, error)
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, na NewAssignment) (Assignment, error) {
	a, err := svc.repo.CreateAssignment(ctx, Assignment{
		CourseID: na.CourseID,
		Title:    na.Title,
		Points:   na.Points,
		Due:      na.Due,
	})
	return a, errors.Wrap(err, "creating assignment")
}

func (svc *service) Get(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignment(ctx, id)
}

func (svc *service) QueryByCourse(ctx context.Context, courseID string) ([]Assignment, error) {
	as, err := svc.repo.QueryAssignmentsByCourse(ctx, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	if as == nil {
		as = []Assignment{}
	}
	return as, nil
}

func (svc *service) Update(ctx context.Context, id string, ua UpdateAssignment) (Assignment, error) {
	a, err := svc.repo.UpdateAssignment(ctx, id, ua)
	return a, errors.Wrap(err, "updating assignment")
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return errors.Wrap(svc.repo.DeleteAssignment(ctx, id), "deleting assignment")
}
