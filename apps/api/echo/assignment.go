package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/courseware/core"
	"github.com/trezcool/courseware/core/assignment"
	"github.com/trezcool/courseware/core/course"
	"github.com/trezcool/courseware/core/submission"
)

var errFileRequired = core.FieldError{Field: "file", Error: "this field is required"}

type assignmentApi struct {
	svc           assignment.Service
	courseSvc     course.Service
	submissionSvc submission.Service
	validate      *validator.Validate
}

func registerAssignmentAPI(g *echo.Group, authn echo.MiddlewareFunc, deps ServerDeps) {
	api := assignmentApi{
		svc:           deps.AssignmentSvc,
		courseSvc:     deps.CourseSvc,
		submissionSvc: deps.SubmissionSvc,
		validate:      deps.Validate,
	}

	ag := g.Group("/assignments")
	ag.POST("", api.create, authn)

	// detail endpoints
	dg := ag.Group("/:id")
	dg.GET("", api.retrieve, assignmentMiddleware(api.svc))

	adg := dg.Group("", authn, assignmentMiddleware(api.svc))
	adg.PATCH("", api.update)
	adg.DELETE("", api.destroy)
	adg.POST("/submissions", api.submit, uploadLimit(deps.Conf))
	adg.GET("/submissions", api.querySubmissions)
}

// authorizeAssignment loads the context assignment and checks the caller teaches its course (or is an admin).
func (api *assignmentApi) authorizeAssignment(ctx echo.Context) (assignment.Assignment, error) {
	a, err := contextAssignment(ctx)
	if err != nil {
		return assignment.Assignment{}, err
	}
	owner, err := courseOwner(ctx, api.courseSvc, a.CourseID)
	if err != nil {
		return assignment.Assignment{}, err
	}
	if _, err = authorizeOwner(ctx, owner); err != nil {
		return assignment.Assignment{}, err
	}
	return a, nil
}

// Handlers

func (api *assignmentApi) create(ctx echo.Context) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	data.CourseID = core.CleanString(data.CourseID)
	if data.CourseID == "" {
		return data.Validate(api.validate)
	}

	c, err := api.courseSvc.Get(ctx.Request().Context(), data.CourseID)
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	if _, err = authorizeOwner(ctx, c.InstructorID); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: a.ID})
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	a, err := contextAssignment(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	a, err := api.authorizeAssignment(ctx)
	if err != nil {
		return err
	}

	var data assignment.UpdateAssignment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	a, err = api.svc.Update(ctx.Request().Context(), a.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	a, err := api.authorizeAssignment(ctx)
	if err != nil {
		return err
	}
	if err = deleteAssignment(ctx, api.svc, api.submissionSvc, a.ID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// submit stores the uploaded `file` as the caller's submission.
// Only students enrolled in the assignment's course may submit.
func (api *assignmentApi) submit(ctx echo.Context) error {
	a, err := contextAssignment(ctx)
	if err != nil {
		return err
	}
	caller, err := mustContextIdentity(ctx)
	if err != nil {
		return err
	}

	c, err := api.courseSvc.Get(ctx.Request().Context(), a.CourseID)
	if err != nil {
		if core.IsNotFound(err) {
			return core.ErrForbidden
		}
		return errors.Wrap(err, "finding course by ID")
	}
	if !c.HasStudent(caller.ID) {
		return core.ErrForbidden
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
			return echo.ErrStatusRequestEntityTooLarge
		}
		return core.NewValidationError(err, errFileRequired)
	}
	src, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer src.Close()

	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	s, err := api.submissionSvc.Create(ctx.Request().Context(), submission.NewSubmission{
		AssignmentID: a.ID,
		StudentID:    caller.ID,
		FileName:     fh.Filename,
		ContentType:  contentType,
		File:         src,
	})
	if err != nil {
		return errors.Wrap(err, "creating submission")
	}
	return ctx.JSON(http.StatusCreated, SubmissionCreatedResponse{ID: s.ID, File: s.File})
}

func (api *assignmentApi) querySubmissions(ctx echo.Context) error {
	a, err := api.authorizeAssignment(ctx)
	if err != nil {
		return err
	}

	var filter submission.QueryFilter
	if err = bindQuery(ctx, &filter); err != nil {
		return errors.Wrap(err, "binding to submission.QueryFilter")
	}
	filter.Clean()
	filter.AssignmentID = a.ID

	page, err := api.submissionSvc.Query(ctx.Request().Context(), filter, bindPage(ctx))
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	return ctx.JSON(http.StatusOK, page)
}

type SubmissionCreatedResponse struct {
	ID   string `json:"id"`
	File string `json:"file"`
}

// deleteAssignment removes an assignment after its submissions.
func deleteAssignment(ctx echo.Context, svc assignment.Service, subSvc submission.Service, id string) error {
	reqCtx := ctx.Request().Context()
	if err := subSvc.DeleteByAssignment(reqCtx, id); err != nil {
		return errors.Wrap(err, "deleting assignment submissions")
	}
	if err := svc.Delete(reqCtx, id); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return nil
}
