package echoapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/courseware/apps/api/echo"
	"github.com/trezcool/courseware/core"
	"github.com/trezcool/courseware/core/auth"
	"github.com/trezcool/courseware/core/user"
	"github.com/trezcool/courseware/tests"
)

func Test_home(t *testing.T) {
	req, rec := newRequest(http.MethodGet, "/")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Courseware API!", rec.Body.String())
}

func Test_userApi_create(t *testing.T) {
	f := createFixtures(t)

	newUser := func(name, email, role string) []byte {
		return marshalObj(t, user.NewUser{Name: name, Email: email, Password: "correct-horse-42", Role: role})
	}

	tests := []httpTest{
		{
			name: "anonymous instructor", method: http.MethodPost, path: "/users",
			body: newUser("Eve", "eve@example.com", user.RoleInstructor), wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
		{
			name: "student cannot create admin", method: http.MethodPost, path: "/users", token: getToken(t, f.student),
			body: newUser("Eve", "eve@example.com", user.RoleAdmin), wantCode: http.StatusForbidden,
			wantData: marshalObj(t, errForbidden),
		},
		{
			name: "instructor cannot create instructor", method: http.MethodPost, path: "/users", token: getToken(t, f.prof),
			body: newUser("Eve", "eve@example.com", user.RoleInstructor), wantCode: http.StatusForbidden,
			wantData: marshalObj(t, errForbidden),
		},
		{
			name: "bad token", method: http.MethodPost, path: "/users", token: "garbage",
			body: newUser("Eve", "eve@example.com", user.RoleStudent), wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errInvalidToken),
		},
		{
			name: "invalid body", method: http.MethodPost, path: "/users",
			body: marshalObj(t, user.NewUser{Name: "Eve", Email: "nope", Password: "short", Role: user.RoleStudent}),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{
				"email":    "email must be a valid email address",
				"password": "password must contain at least 8 characters",
			}),
		},
		{
			name: "duplicate email", method: http.MethodPost, path: "/users",
			body: newUser("Eve", "STU@example.com", user.RoleStudent), wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"email": user.ErrEmailExists.Error()}),
		},
		{
			name: "malformed json", method: http.MethodPost, path: "/users",
			body: []byte(`{"name": `), wantCode: http.StatusBadRequest,
		},
	}
	runHTTPTests(t, tests)

	t.Run("anonymous student", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/users", newUser("Eve", "eve@example.com", user.RoleStudent))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		var res CreatedResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		usr, err := usrRepo.GetUserByID(context.Background(), res.ID)
		require.NoError(t, err)
		assert.Equal(t, user.RoleStudent, usr.Role)
		assert.NoError(t, usr.CheckPassword("correct-horse-42"))
	})

	t.Run("admin creates instructor", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/users", getToken(t, f.admin), newUser("Ian", "ian@example.com", user.RoleInstructor))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		usr, err := usrRepo.GetUserByEmail(context.Background(), "ian@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.RoleInstructor, usr.Role)
	})
}

func Test_userApi_login(t *testing.T) {
	f := createFixtures(t)

	login := func(email, pwd string) []byte {
		return marshalObj(t, user.LoginRequest{Email: email, Password: pwd})
	}

	tests := []httpTest{
		{
			name: "missing fields", method: http.MethodPost, path: "/users/login", body: login("", ""),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"email": "this field is required", "password": "this field is required"}),
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/users/login", body: login(f.student.Email, "nope"),
			wantCode: http.StatusUnauthorized, wantData: marshalObj(t, httpErr{Error: "invalid credentials"}),
		},
		{
			name: "unknown email", method: http.MethodPost, path: "/users/login", body: login("who@example.com", testutil.DefaultPassword),
			wantCode: http.StatusUnauthorized, wantData: marshalObj(t, httpErr{Error: "invalid credentials"}),
		},
	}
	runHTTPTests(t, tests)

	t.Run("valid credentials", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/users/login", login("STU@example.com", testutil.DefaultPassword))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var res LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		id, err := tokens.Verify(res.Token)
		require.NoError(t, err)
		assert.Equal(t, auth.Identity{ID: f.student.ID, Role: user.RoleStudent}, id)
	})
}

func Test_userApi_retrieve(t *testing.T) {
	f := createFixtures(t)

	details := func(usr user.User, courses ...string) []byte {
		if courses == nil {
			courses = []string{}
		}
		return marshalObj(t, user.Details{User: usr, Courses: courses})
	}

	// a token issued 25h ago has expired
	expired := auth.NewTokenService(core.NewTestConfig())
	expired.NowFunc = func() time.Time { return time.Now().Add(-25 * time.Hour) }
	expiredToken, err := expired.Issue(f.student.ID, f.student.Role)
	require.NoError(t, err)

	tests := []httpTest{
		{name: "auth required", path: "/users/" + f.student.ID, wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{
			name: "expired token", path: "/users/" + f.student.ID, token: expiredToken,
			wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errInvalidToken),
		},
		{
			name: "other student", path: "/users/" + f.student.ID, token: getToken(t, f.outsider),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden),
		},
		{
			name: "unknown user", path: "/users/unknown", token: getToken(t, f.admin),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "user not found"}),
		},
		{
			name: "self (student)", path: "/users/" + f.student.ID, token: getToken(t, f.student),
			wantCode: http.StatusOK, wantData: details(f.student, f.course.ID),
		},
		{
			name: "self (instructor)", path: "/users/" + f.prof.ID, token: getToken(t, f.prof),
			wantCode: http.StatusOK, wantData: details(f.prof, f.course.ID),
		},
		{
			name: "admin", path: "/users/" + f.outsider.ID, token: getToken(t, f.admin),
			wantCode: http.StatusOK, wantData: details(f.outsider),
		},
	}
	runHTTPTests(t, tests)

	t.Run("password is never serialized", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/users/"+f.student.ID, getToken(t, f.student))
		app.ServeHTTP(rec, req)
		assert.NotContains(t, rec.Body.String(), "password")
	})
}
