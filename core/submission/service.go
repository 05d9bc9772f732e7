package submission

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/courseware/core"
)

var (
	// errors
	ErrNotFound = core.NotFoundError{Resource: "submission"}
)

type (
	Repository interface {
		CreateSubmission(ctx context.Context, s Submission) (Submission, error)
		GetSubmission(ctx context.Context, id string) (Submission, error)
		CountSubmissions(ctx context.Context, filter QueryFilter) (int64, error)
		// QuerySubmissions returns submissions ordered by id.
		QuerySubmissions(ctx context.Context, filter QueryFilter, offset, limit int) ([]Submission, error)
		UpdateGrade(ctx context.Context, id string, grade float64) (Submission, error)
		QueryFileIDsByAssignment(ctx context.Context, assignmentID string) ([]string, error)
		DeleteSubmissionsByAssignment(ctx context.Context, assignmentID string) error
	}

	Service interface {
		Create(ctx context.Context, ns NewSubmission) (Submission, error)
		Get(ctx context.Context, id string) (Submission, error)
		Query(ctx context.Context, filter QueryFilter, page int) (Page, error)
		Grade(ctx context.Context, id string, grade float64) (Submission, error)
		OpenFile(ctx context.Context, s Submission) (*core.Blob, error)
		DeleteByAssignment(ctx context.Context, assignmentID string) error
	}

	service struct {
		repo     Repository
		blobs    core.BlobStore
		events   core.EventPublisher
		logger   core.Logger
		pageSize int
		nowFunc  func() time.Time
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	blobs core.BlobStore,
	events core.EventPublisher,
	logger core.Logger,
	conf *core.Config,
) Service {
	return &service{
		repo:     repo,
		blobs:    blobs,
		events:   events,
		logger:   logger,
		pageSize: conf.PageSize,
		nowFunc:  time.Now,
	}
}

// Create streams the file into the blob store then records the submission.
// The stored blob is removed again if the submission cannot be recorded.
func (svc *service) Create(ctx context.Context, ns NewSubmission) (Submission, error) {
	fileID, err := svc.blobs.Put(ctx, ns.FileName, ns.ContentType, ns.File)
	if err != nil {
		return Submission{}, errors.Wrap(err, "storing submission file")
	}

	s, err := svc.repo.CreateSubmission(ctx, Submission{
		AssignmentID: ns.AssignmentID,
		StudentID:    ns.StudentID,
		Timestamp:    svc.nowFunc().UTC(),
		FileID:       fileID,
		FileName:     ns.FileName,
		ContentType:  ns.ContentType,
	})
	if err != nil {
		if dErr := svc.blobs.Delete(context.Background(), fileID); dErr != nil {
			svc.warn(fmt.Sprintf("removing orphan submission file %s: %v", fileID, dErr), dErr)
		}
		return Submission{}, errors.Wrap(err, "creating submission")
	}

	svc.publish(ctx, core.NewEvent(core.EventSubmissionCreated, s.ID, map[string]interface{}{
		"assignmentId": s.AssignmentID,
		"studentId":    s.StudentID,
	}))
	return s.withFile(), nil
}

func (svc *service) Get(ctx context.Context, id string) (Submission, error) {
	s, err := svc.repo.GetSubmission(ctx, id)
	if err != nil {
		return Submission{}, err
	}
	return s.withFile(), nil
}

func (svc *service) Query(ctx context.Context, filter QueryFilter, page int) (Page, error) {
	count, err := svc.repo.CountSubmissions(ctx, filter)
	if err != nil {
		return Page{}, errors.Wrap(err, "counting submissions")
	}
	p := core.Paginate(count, page, svc.pageSize)

	subs, err := svc.repo.QuerySubmissions(ctx, filter, p.Offset, p.PageSize)
	if err != nil {
		return Page{}, errors.Wrap(err, "querying submissions")
	}
	res := make([]Submission, 0, len(subs))
	for _, s := range subs {
		res = append(res, s.withFile())
	}

	path := "/assignments/" + url.PathEscape(filter.AssignmentID) + "/submissions"
	return Page{
		Submissions: res,
		Pagination:  p,
		Links:       p.Links(path, filter.values()),
	}, nil
}

func (svc *service) Grade(ctx context.Context, id string, grade float64) (Submission, error) {
	s, err := svc.repo.UpdateGrade(ctx, id, grade)
	if err != nil {
		return Submission{}, errors.Wrap(err, "grading submission")
	}
	return s.withFile(), nil
}

func (svc *service) OpenFile(ctx context.Context, s Submission) (*core.Blob, error) {
	blob, err := svc.blobs.Get(ctx, s.FileID)
	return blob, errors.Wrap(err, "opening submission file")
}

// DeleteByAssignment removes an assignment's submissions; their files are removed best effort.
func (svc *service) DeleteByAssignment(ctx context.Context, assignmentID string) error {
	fileIDs, err := svc.repo.QueryFileIDsByAssignment(ctx, assignmentID)
	if err != nil {
		return errors.Wrap(err, "querying submission files")
	}
	if err = svc.repo.DeleteSubmissionsByAssignment(ctx, assignmentID); err != nil {
		return errors.Wrap(err, "deleting submissions")
	}
	for _, id := range fileIDs {
		if err = svc.blobs.Delete(ctx, id); err != nil && !core.IsNotFound(err) {
			svc.warn(fmt.Sprintf("deleting submission file %s: %v", id, err), err)
		}
	}
	return nil
}

func (svc *service) publish(ctx context.Context, events ...core.Event) {
	if svc.events == nil {
		return
	}
	if err := svc.events.Publish(ctx, events...); err != nil {
		svc.warn(fmt.Sprintf("publishing submission events: %v", err), err)
	}
}

func (svc *service) warn(msg string, args ...interface{}) {
	if svc.logger != nil {
		svc.logger.Warn(msg, args...)
	}
}
