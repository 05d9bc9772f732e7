package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/courseware/core"
	"github.com/trezcool/courseware/core/auth"
	"github.com/trezcool/courseware/core/course"
	"github.com/trezcool/courseware/core/user"
)

type userApi struct {
	svc       user.Service
	courseSvc course.Service
	tokens    *auth.TokenService
	validate  *validator.Validate
}

func registerUserAPI(g *echo.Group, authn, optAuthn echo.MiddlewareFunc, deps ServerDeps) {
	api := userApi{
		svc:       deps.UserSvc,
		courseSvc: deps.CourseSvc,
		tokens:    deps.Tokens,
		validate:  deps.Validate,
	}

	ug := g.Group("/users")
	ug.POST("", api.create, optAuthn)
	ug.POST("/login", api.login)
	ug.GET("/:id", api.retrieve, authn)
}

type (
	CreatedResponse struct {
		ID string `json:"id"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}
)

// Handlers

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	data.Clean()

	// only admins may create admins & instructors
	caller, _ := getContextIdentity(ctx)
	if !auth.CanGrantRole(caller.Role, data.Role) {
		if caller.ID == "" {
			return errMissingToken
		}
		return core.ErrForbidden
	}

	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: usr.ID})
}

func (api *userApi) login(ctx echo.Context) error {
	var data user.LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := api.tokens.Issue(usr.ID, usr.Role)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	if _, err = authorizeOwner(ctx, usr.ID); err != nil {
		return err
	}

	courses, err := api.courseSvc.CourseIDsFor(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "finding user courses")
	}
	return ctx.JSON(http.StatusOK, user.Details{User: usr, Courses: courses})
}
