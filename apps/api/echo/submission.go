package echoapi

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/courseware/core"
	"github.com/trezcool/courseware/core/assignment"
	"github.com/trezcool/courseware/core/auth"
	"github.com/trezcool/courseware/core/course"
	"github.com/trezcool/courseware/core/submission"
)

type submissionApi struct {
	svc           submission.Service
	assignmentSvc assignment.Service
	courseSvc     course.Service
	validate      *validator.Validate
}

func registerSubmissionAPI(g *echo.Group, authn echo.MiddlewareFunc, deps ServerDeps) {
	api := submissionApi{
		svc:           deps.SubmissionSvc,
		assignmentSvc: deps.AssignmentSvc,
		courseSvc:     deps.CourseSvc,
		validate:      deps.Validate,
	}

	dg := g.Group("/submissions/:id", authn, submissionMiddleware(api.svc))
	dg.PATCH("", api.grade)
	dg.GET("/file", api.download)
}

// instructorOf returns the instructor of the course the submission belongs to.
func (api *submissionApi) instructorOf(ctx echo.Context, s submission.Submission) (string, error) {
	a, err := api.assignmentSvc.Get(ctx.Request().Context(), s.AssignmentID)
	if err != nil {
		if core.IsNotFound(err) {
			return "", nil
		}
		return "", errors.Wrap(err, "finding assignment by ID")
	}
	return courseOwner(ctx, api.courseSvc, a.CourseID)
}

// Handlers

func (api *submissionApi) grade(ctx echo.Context) error {
	s, err := contextSubmission(ctx)
	if err != nil {
		return err
	}
	owner, err := api.instructorOf(ctx, s)
	if err != nil {
		return err
	}
	if _, err = authorizeOwner(ctx, owner); err != nil {
		return err
	}

	var data submission.GradeSubmission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeSubmission")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	s, err = api.svc.Grade(ctx.Request().Context(), s.ID, *data.Grade)
	if err != nil {
		return errors.Wrap(err, "grading submission")
	}
	return ctx.JSON(http.StatusOK, s)
}

// download streams the submitted file to its student, the course instructor or an admin.
func (api *submissionApi) download(ctx echo.Context) error {
	s, err := contextSubmission(ctx)
	if err != nil {
		return err
	}
	caller, err := mustContextIdentity(ctx)
	if err != nil {
		return err
	}
	if !auth.CanAct(caller.Role, caller.ID, s.StudentID) {
		owner, err := api.instructorOf(ctx, s)
		if err != nil {
			return err
		}
		if !auth.CanAct(caller.Role, caller.ID, owner) {
			return core.ErrForbidden
		}
	}

	blob, err := api.svc.OpenFile(ctx.Request().Context(), s)
	if err != nil {
		return errors.Wrap(err, "opening submission file")
	}
	defer blob.Close()

	contentType := s.ContentType
	if contentType == "" {
		contentType = blob.ContentType
	}
	hdr := ctx.Response().Header()
	hdr.Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": s.FileName}))
	if blob.Size > 0 {
		hdr.Set(echo.HeaderContentLength, strconv.FormatInt(blob.Size, 10))
	}
	if err = ctx.Stream(http.StatusOK, contentType, blob); err != nil {
		return errors.Wrap(err, fmt.Sprintf("streaming submission file %s", s.ID))
	}
	return nil
}
