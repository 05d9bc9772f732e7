package course

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/trezcool/courseware/core"
	"github.com/trezcool/courseware/core/user"
)

var (
	// errors
	ErrNotFound = core.NotFoundError{Resource: "course"}

	errInvalidInstructor = "instructor must be an existing user with the instructor or admin role"
	errInvalidStudents   = "unknown or non-student user ids: %v"
)

const listPath = "/courses"

type (
	Repository interface {
		CreateCourse(ctx context.Context, c Course) (Course, error)
		// GetCourse returns the full course, students included.
		GetCourse(ctx context.Context, id string) (Course, error)
		CountCourses(ctx context.Context, filter QueryFilter) (int64, error)
		// QueryCourses returns courses ordered by id, without their students.
		QueryCourses(ctx context.Context, filter QueryFilter, offset, limit int) ([]Course, error)
		UpdateCourse(ctx context.Context, id string, uc UpdateCourse) (Course, error)
		// AddStudents & RemoveStudents atomically update the students set only.
		AddStudents(ctx context.Context, id string, studentIDs []string) error
		RemoveStudents(ctx context.Context, id string, studentIDs []string) error
		DeleteCourse(ctx context.Context, id string) error
		QueryCourseIDsByInstructor(ctx context.Context, instructorID string) ([]string, error)
		QueryCourseIDsByStudent(ctx context.Context, studentID string) ([]string, error)
	}

	// PageCache caches public course list pages.
	PageCache interface {
		Get(ctx context.Context, key string) (Page, bool)
		Set(ctx context.Context, key string, page Page)
		Invalidate(ctx context.Context)
	}

	Service interface {
		Create(ctx context.Context, nc NewCourse) (Course, error)
		Get(ctx context.Context, id string) (Course, error)
		Query(ctx context.Context, filter QueryFilter, page int) (Page, error)
		Update(ctx context.Context, id string, uc UpdateCourse) (Course, error)
		Delete(ctx context.Context, id string) error
		UpdateEnrollment(ctx context.Context, id string, eu EnrollmentUpdate) (Course, error)
		WriteRoster(ctx context.Context, c Course, w io.Writer) error
		CourseIDsFor(ctx context.Context, usr user.User) ([]string, error)
	}

	service struct {
		repo     Repository
		usrSvc   user.Service
		cache    PageCache
		events   core.EventPublisher
		logger   core.Logger
		pageSize int
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	usrSvc user.Service,
	cache PageCache,
	events core.EventPublisher,
	logger core.Logger,
	conf *core.Config,
) Service {
	return &service{
		repo:     repo,
		usrSvc:   usrSvc,
		cache:    cache,
		events:   events,
		logger:   logger,
		pageSize: conf.PageSize,
	}
}

func (svc *service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	if err := svc.checkInstructor(ctx, nc.InstructorID); err != nil {
		return Course{}, err
	}

	c, err := svc.repo.CreateCourse(ctx, Course{
		Subject:      nc.Subject,
		Number:       nc.Number,
		Title:        nc.Title,
		Term:         nc.Term,
		InstructorID: nc.InstructorID,
		Students:     []string{},
	})
	if err != nil {
		return Course{}, errors.Wrap(err, "creating course")
	}
	svc.invalidate(ctx)
	return c, nil
}

func (svc *service) Get(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter QueryFilter, page int) (Page, error) {
	count, err := svc.repo.CountCourses(ctx, filter)
	if err != nil {
		return Page{}, errors.Wrap(err, "counting courses")
	}
	p := core.Paginate(count, page, svc.pageSize)

	key := fmt.Sprintf("%d|%d|%s|%d|%s", p.Page, p.PageSize, filter.Subject, filter.Number, filter.Term)
	if svc.cache != nil {
		if cached, ok := svc.cache.Get(ctx, key); ok && cached.Count == count {
			return cached, nil
		}
	}

	courses, err := svc.repo.QueryCourses(ctx, filter, p.Offset, p.PageSize)
	if err != nil {
		return Page{}, errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []Course{}
	}

	res := Page{
		Courses:    courses,
		Pagination: p,
		Links:      p.Links(listPath, filter.values()),
	}
	if svc.cache != nil {
		svc.cache.Set(ctx, key, res)
	}
	return res, nil
}

func (svc *service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	if uc.InstructorID != nil {
		if err := svc.checkInstructor(ctx, *uc.InstructorID); err != nil {
			return Course{}, err
		}
	}
	c, err := svc.repo.UpdateCourse(ctx, id, uc)
	if err != nil {
		return Course{}, errors.Wrap(err, "updating course")
	}
	svc.invalidate(ctx)
	return c, nil
}

func (svc *service) Delete(ctx context.Context, id string) error {
	if err := svc.repo.DeleteCourse(ctx, id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	svc.invalidate(ctx)
	svc.publish(ctx, core.NewEvent(core.EventCourseDeleted, id, nil))
	return nil
}

func (svc *service) UpdateEnrollment(ctx context.Context, id string, eu EnrollmentUpdate) (Course, error) {
	if len(eu.Add) > 0 {
		if err := svc.checkStudents(ctx, eu.Add); err != nil {
			return Course{}, err
		}
		if err := svc.repo.AddStudents(ctx, id, eu.Add); err != nil {
			return Course{}, errors.Wrap(err, "adding students")
		}
	}
	if len(eu.Remove) > 0 {
		if err := svc.repo.RemoveStudents(ctx, id, eu.Remove); err != nil {
			return Course{}, errors.Wrap(err, "removing students")
		}
	}

	c, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return Course{}, errors.Wrap(err, "fetching course")
	}
	svc.publish(ctx, core.NewEvent(core.EventCourseEnrollmentChanged, id, map[string]interface{}{
		"added":   eu.Add,
		"removed": eu.Remove,
	}))
	return c, nil
}

func (svc *service) WriteRoster(ctx context.Context, c Course, w io.Writer) error {
	students, err := svc.usrSvc.GetByIDs(ctx, c.Students)
	if err != nil {
		return errors.Wrap(err, "fetching enrolled students")
	}
	return writeRoster(w, students)
}

func (svc *service) CourseIDsFor(ctx context.Context, usr user.User) ([]string, error) {
	var (
		ids []string
		err error
	)
	switch {
	case usr.IsStudent():
		ids, err = svc.repo.QueryCourseIDsByStudent(ctx, usr.ID)
	default:
		ids, err = svc.repo.QueryCourseIDsByInstructor(ctx, usr.ID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "querying user courses")
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (svc *service) checkInstructor(ctx context.Context, id string) error {
	usr, err := svc.usrSvc.GetByID(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return core.NewValidationError(nil, core.FieldError{Field: "instructorId", Error: errInvalidInstructor})
		}
		return errors.Wrap(err, "finding instructor")
	}
	if !usr.CanTeach() {
		return core.NewValidationError(nil, core.FieldError{Field: "instructorId", Error: errInvalidInstructor})
	}
	return nil
}

func (svc *service) checkStudents(ctx context.Context, ids []string) error {
	users, err := svc.usrSvc.GetByIDs(ctx, ids)
	if err != nil {
		return errors.Wrap(err, "finding students")
	}
	valid := make(map[string]bool, len(users))
	for _, u := range users {
		valid[u.ID] = u.IsStudent()
	}
	var invalid []string
	for _, id := range ids {
		if !valid[id] {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) > 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "add", Error: fmt.Sprintf(errInvalidStudents, invalid)})
	}
	return nil
}

func (svc *service) invalidate(ctx context.Context) {
	if svc.cache != nil {
		svc.cache.Invalidate(ctx)
	}
}

func (svc *service) publish(ctx context.Context, events ...core.Event) {
	if svc.events == nil {
		return
	}
	if err := svc.events.Publish(ctx, events...); err != nil && svc.logger != nil {
		svc.logger.Warn(fmt.Sprintf("publishing course events: %v", err), err)
	}
}
