package echoapi

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/courseware/core"
	"github.com/trezcool/courseware/core/assignment"
	"github.com/trezcool/courseware/core/auth"
	"github.com/trezcool/courseware/core/course"
	"github.com/trezcool/courseware/core/submission"
)

const (
	ctxCourseKey     = "course"
	ctxAssignmentKey = "assignment"
	ctxSubmissionKey = "submission"
)

var errObjNotFoundInCtx = errors.New("object not found in echo.Context")

// uploadLimit rejects request bodies over the configured upload size with 413.
func uploadLimit(conf *core.Config) echo.MiddlewareFunc {
	if conf.Blob.MaxUploadSize <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return middleware.BodyLimit(fmt.Sprintf("%dB", conf.Blob.MaxUploadSize))
}

func requestLogger(logger core.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(ctx echo.Context, v middleware.RequestLoggerValues) error {
			fields := map[string]interface{}{
				"method":    v.Method,
				"uri":       v.URI,
				"status":    v.Status,
				"latency":   v.Latency.String(),
				"requestId": v.RequestID,
			}
			if id, ok := getContextIdentity(ctx); ok {
				logger.Info("request", fields, id.Caller())
			} else {
				logger.Info("request", fields)
			}
			return nil
		},
	})
}

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := mustContextIdentity(ctx)
			if err != nil {
				return err
			}
			if !auth.IsAdmin(id.Role) {
				return core.ErrForbidden
			}
			return next(ctx)
		}
	}
}

// Object loaders: they resolve the `:id` path param before any permission check runs.

func courseMiddleware(svc course.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			c, err := svc.Get(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				return errors.Wrap(err, "finding course by ID")
			}
			ctx.Set(ctxCourseKey, c)
			return next(ctx)
		}
	}
}

func assignmentMiddleware(svc assignment.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			a, err := svc.Get(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				return errors.Wrap(err, "finding assignment by ID")
			}
			ctx.Set(ctxAssignmentKey, a)
			return next(ctx)
		}
	}
}

func submissionMiddleware(svc submission.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			s, err := svc.Get(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				return errors.Wrap(err, "finding submission by ID")
			}
			ctx.Set(ctxSubmissionKey, s)
			return next(ctx)
		}
	}
}

func contextCourse(ctx echo.Context) (course.Course, error) {
	if c, ok := ctx.Get(ctxCourseKey).(course.Course); ok {
		return c, nil
	}
	return course.Course{}, errors.Wrap(errObjNotFoundInCtx, ctxCourseKey)
}

func contextAssignment(ctx echo.Context) (assignment.Assignment, error) {
	if a, ok := ctx.Get(ctxAssignmentKey).(assignment.Assignment); ok {
		return a, nil
	}
	return assignment.Assignment{}, errors.Wrap(errObjNotFoundInCtx, ctxAssignmentKey)
}

func contextSubmission(ctx echo.Context) (submission.Submission, error) {
	if s, ok := ctx.Get(ctxSubmissionKey).(submission.Submission); ok {
		return s, nil
	}
	return submission.Submission{}, errors.Wrap(errObjNotFoundInCtx, ctxSubmissionKey)
}

// courseOwner returns the instructor of courseID.
// An assignment whose course vanished is only manageable by admins.
func courseOwner(ctx echo.Context, svc course.Service, courseID string) (string, error) {
	c, err := svc.Get(ctx.Request().Context(), courseID)
	if err != nil {
		if core.IsNotFound(err) {
			return "", nil
		}
		return "", errors.Wrap(err, "finding course by ID")
	}
	return c.InstructorID, nil
}

// authorizeOwner checks the caller may act on a resource owned by ownerID.
func authorizeOwner(ctx echo.Context, ownerID string) (auth.Identity, error) {
	id, err := mustContextIdentity(ctx)
	if err != nil {
		return auth.Identity{}, err
	}
	if !auth.CanAct(id.Role, id.ID, ownerID) {
		return id, core.ErrForbidden
	}
	return id, nil
}
