package user

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/courseware/core"
)

var (
	// errors
	ErrNotFound             = core.NotFoundError{Resource: "user"}
	ErrEmailExists          = errors.New("a user with this email already exists")
	ErrAuthenticationFailed = errors.New("invalid credentials")
)

type (
	Repository interface {
		// CreateUser returns ErrEmailExists if the email is taken.
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// QueryUsersByIDs returns the known users among ids, ordered by id. Unknown ids are skipped.
		QueryUsersByIDs(ctx context.Context, ids []string) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service interface {
		Create(ctx context.Context, nu NewUser) (User, error)
		Authenticate(ctx context.Context, email, pwd string) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		GetByIDs(ctx context.Context, ids []string) ([]User, error)
		// Save creates the user or replaces the existing one with the same email.
		Save(ctx context.Context, usr User) (User, error)
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		appName string
		nowFunc func() time.Time
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		appName: conf.AppName,
		nowFunc: time.Now,
	}
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		CreatedAt: svc.nowFunc().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return User{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return User{}, errors.Wrap(err, "creating user")
	}

	svc.sendWelcomeMail(usr)
	return usr, nil
}

func (svc *service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, ErrAuthenticationFailed
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrAuthenticationFailed
	}
	return usr, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) GetByIDs(ctx context.Context, ids []string) ([]User, error) {
	if len(ids) == 0 {
		return []User{}, nil
	}
	return svc.repo.QueryUsersByIDs(ctx, ids)
}

func (svc *service) Save(ctx context.Context, usr User) (User, error) {
	usr.Email = core.CleanString(usr.Email, true /* lower */)
	existing, err := svc.repo.GetUserByEmail(ctx, usr.Email)
	switch {
	case err == nil:
		usr.ID = existing.ID
		usr.CreatedAt = existing.CreatedAt
		if usr.PasswordHash == nil {
			usr.PasswordHash = existing.PasswordHash
		}
		return svc.repo.UpdateUser(ctx, usr)
	case core.IsNotFound(err):
		usr.CreatedAt = svc.nowFunc().UTC()
		return svc.repo.CreateUser(ctx, usr)
	default:
		return User{}, errors.Wrap(err, "finding user by email")
	}
}

func (svc *service) sendWelcomeMail(usr User) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Welcome to " + svc.appName,
		Body: fmt.Sprintf(
			"Hi %s,\r\n\r\nYour %s account has been created with the %q role.\r\nSign in with %s to get started.\r\n",
			usr.Name, svc.appName, usr.Role, usr.Email,
		),
	})
}
