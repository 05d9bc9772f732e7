package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/courseware/core"
	"github.com/trezcool/courseware/core/assignment"
	"github.com/trezcool/courseware/core/auth"
	"github.com/trezcool/courseware/core/course"
	"github.com/trezcool/courseware/core/submission"
)

type courseApi struct {
	svc           course.Service
	assignmentSvc assignment.Service
	submissionSvc submission.Service
	validate      *validator.Validate
}

func registerCourseAPI(g *echo.Group, authn echo.MiddlewareFunc, deps ServerDeps) {
	api := courseApi{
		svc:           deps.CourseSvc,
		assignmentSvc: deps.AssignmentSvc,
		submissionSvc: deps.SubmissionSvc,
		validate:      deps.Validate,
	}

	cg := g.Group("/courses")
	cg.GET("", api.query)
	cg.POST("", api.create, authn, adminMiddleware())

	// detail endpoints
	dg := cg.Group("/:id")
	dg.GET("", api.retrieve, courseMiddleware(api.svc))
	dg.GET("/assignments", api.queryAssignments, courseMiddleware(api.svc))

	ag := dg.Group("", authn, courseMiddleware(api.svc))
	ag.PATCH("", api.update)
	ag.DELETE("", api.destroy)
	ag.GET("/students", api.queryStudents)
	ag.POST("/students", api.updateEnrollment)
	ag.GET("/roster", api.roster)
}

type (
	StudentsResponse struct {
		Students []string `json:"students"`
	}

	AssignmentsResponse struct {
		Assignments []assignment.Assignment `json:"assignments"`
	}
)

// authorizeCourse loads the context course and checks the caller teaches it (or is an admin).
func authorizeCourse(ctx echo.Context) (course.Course, error) {
	c, err := contextCourse(ctx)
	if err != nil {
		return course.Course{}, err
	}
	if _, err = authorizeOwner(ctx, c.InstructorID); err != nil {
		return course.Course{}, err
	}
	return c, nil
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	filter, err := bindCourseFilter(ctx)
	if err != nil {
		return err
	}
	filter.Clean()

	page, err := api.svc.Query(ctx.Request().Context(), filter, bindPage(ctx))
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: c.ID})
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	c, err := contextCourse(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c.Summary())
}

func (api *courseApi) update(ctx echo.Context) error {
	c, err := authorizeCourse(ctx)
	if err != nil {
		return err
	}

	var data course.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	c, err = api.svc.Update(ctx.Request().Context(), c.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, c)
}

// destroy removes the course along with its assignments & their submissions.
func (api *courseApi) destroy(ctx echo.Context) error {
	c, err := contextCourse(ctx)
	if err != nil {
		return err
	}
	id, err := mustContextIdentity(ctx)
	if err != nil {
		return err
	}
	if !auth.IsAdmin(id.Role) {
		return core.ErrForbidden
	}

	reqCtx := ctx.Request().Context()
	assignments, err := api.assignmentSvc.QueryByCourse(reqCtx, c.ID)
	if err != nil {
		return errors.Wrap(err, "querying course assignments")
	}
	for _, a := range assignments {
		if err = deleteAssignment(ctx, api.assignmentSvc, api.submissionSvc, a.ID); err != nil {
			return err
		}
	}
	if err = api.svc.Delete(reqCtx, c.ID); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) queryStudents(ctx echo.Context) error {
	c, err := authorizeCourse(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, studentsResponse(c))
}

func (api *courseApi) updateEnrollment(ctx echo.Context) error {
	c, err := authorizeCourse(ctx)
	if err != nil {
		return err
	}

	var data course.EnrollmentUpdate
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollmentUpdate")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	c, err = api.svc.UpdateEnrollment(ctx.Request().Context(), c.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating enrollment")
	}
	return ctx.JSON(http.StatusOK, studentsResponse(c))
}

func (api *courseApi) roster(ctx echo.Context) error {
	c, err := authorizeCourse(ctx)
	if err != nil {
		return err
	}

	// rendered fully before responding so that a failure still yields a clean 500
	var buf bytes.Buffer
	if err = api.svc.WriteRoster(ctx.Request().Context(), c, &buf); err != nil {
		return errors.Wrap(err, "writing roster")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="roster-%s.csv"`, c.ID))
	return ctx.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (api *courseApi) queryAssignments(ctx echo.Context) error {
	c, err := contextCourse(ctx)
	if err != nil {
		return err
	}
	as, err := api.assignmentSvc.QueryByCourse(ctx.Request().Context(), c.ID)
	if err != nil {
		return errors.Wrap(err, "querying course assignments")
	}
	return ctx.JSON(http.StatusOK, AssignmentsResponse{Assignments: as})
}

func studentsResponse(c course.Course) StudentsResponse {
	students := c.Students
	if students == nil {
		students = []string{}
	}
	return StudentsResponse{Students: students}
}
