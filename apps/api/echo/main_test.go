package echoapi_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"

	. "github.com/trezcool/courseware/apps/api/echo"
	"github.com/trezcool/courseware/core"
	"github.com/trezcool/courseware/core/assignment"
	"github.com/trezcool/courseware/core/auth"
	"github.com/trezcool/courseware/core/course"
	"github.com/trezcool/courseware/core/submission"
	"github.com/trezcool/courseware/core/user"
	emailsvc "github.com/trezcool/courseware/services/email"
	memblob "github.com/trezcool/courseware/storage/blob/memory"
	inmemdb "github.com/trezcool/courseware/storage/database/inmem"
	"github.com/trezcool/courseware/tests"
)

var (
	db      *inmemdb.DB
	blobs   *memblob.Store
	app     *Server
	tokens  *auth.TokenService
	usrRepo user.Repository
	crsRepo course.Repository
	asgRepo assignment.Repository
	subRepo submission.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errInvalidToken = httpErr{Error: "invalid or expired jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestMain(m *testing.M) {
	conf := core.NewTestConfig()
	conf.PageSize = 2

	// set up DB & repos
	db = inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)
	crsRepo = inmemdb.NewCourseRepository(db)
	asgRepo = inmemdb.NewAssignmentRepository(db)
	subRepo = inmemdb.NewSubmissionRepository(db)
	blobs = memblob.New()

	// set up services
	var logger core.Logger = nopLogger{}
	events := new(testutil.EventRecorder)
	usrSvc := user.NewService(usrRepo, emailsvc.NewConsoleServiceMock(conf), conf)
	tokens = auth.NewTokenService(conf)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up server
	app = NewServer(ServerDeps{
		Conf:          conf,
		Logger:        logger,
		Tokens:        tokens,
		UserSvc:       usrSvc,
		CourseSvc:     course.NewService(crsRepo, usrSvc, nil, events, logger, conf),
		AssignmentSvc: assignment.NewService(asgRepo),
		SubmissionSvc: submission.NewService(subRepo, blobs, events, logger, conf),
		Validate:      validate,
		Translator:    translator,
	})

	os.Exit(m.Run())
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func newUploadRequest(t *testing.T, path, token, field, filename string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("newUploadRequest(): %v", err)
		}
		_, _ = part.Write(content)
	} else {
		_ = w.WriteField("comment", "no file")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("newUploadRequest(): %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func getToken(t *testing.T, usr user.User) string {
	token, err := tokens.Issue(usr.ID, usr.Role)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

// fixtures is the usual cast: an admin, two instructors each teaching a course, an enrolled & a non-enrolled student.
type fixtures struct {
	admin, prof, otherProf, student, outsider user.User
	course, otherCourse                       course.Course
}

func createFixtures(t *testing.T) fixtures {
	t.Helper()
	db.Reset()

	var f fixtures
	f.admin = testutil.CreateUser(t, usrRepo, "Admin", "admin@example.com", user.RoleAdmin)
	f.prof = testutil.CreateUser(t, usrRepo, "Prof", "prof@example.com", user.RoleInstructor)
	f.otherProf = testutil.CreateUser(t, usrRepo, "Other Prof", "other@example.com", user.RoleInstructor)
	f.student = testutil.CreateUser(t, usrRepo, "Stu Dent", "stu@example.com", user.RoleStudent)
	f.outsider = testutil.CreateUser(t, usrRepo, "Out Sider", "out@example.com", user.RoleStudent)
	f.course = testutil.CreateCourse(t, crsRepo, "CS", 101, "Intro", "F24", f.prof.ID, f.student.ID)
	f.otherCourse = testutil.CreateCourse(t, crsRepo, "MATH", 101, "Calculus", "F24", f.otherProf.ID)
	return f
}
