package echoapi_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/courseware/tests"
)

func Test_submissionApi_grade(t *testing.T) {
	f := createFixtures(t)
	a := testutil.CreateAssignment(t, asgRepo, f.course.ID, "HW1", 10, due)
	s := testutil.CreateSubmission(t, subRepo, a.ID, f.student.ID, "f1")
	path := "/submissions/" + s.ID

	grade := 8.5
	graded := s
	graded.Grade = &grade
	graded.File = s.FilePath()

	runHTTPTests(t, []httpTest{
		{name: "auth required", method: http.MethodPatch, path: path, body: []byte(`{"grade":8.5}`), wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{
			name: "unknown", method: http.MethodPatch, path: "/submissions/unknown", body: []byte(`{"grade":8.5}`), token: getToken(t, f.prof),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "submission not found"}),
		},
		{
			name: "submitter", method: http.MethodPatch, path: path, body: []byte(`{"grade":10}`), token: getToken(t, f.student),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden),
		},
		{
			name: "other instructor", method: http.MethodPatch, path: path, body: []byte(`{"grade":8.5}`), token: getToken(t, f.otherProf),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden),
		},
		{
			name: "grade required", method: http.MethodPatch, path: path, body: []byte(`{}`), token: getToken(t, f.prof),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"grade": "this field is required"}),
		},
		{
			name: "negative grade", method: http.MethodPatch, path: path, body: []byte(`{"grade":-1}`), token: getToken(t, f.prof),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"grade": "grade must be 0 or greater"}),
		},
		{
			name: "owner", method: http.MethodPatch, path: path, body: []byte(`{"grade":8.5}`), token: getToken(t, f.prof),
			wantCode: http.StatusOK, wantData: marshalObj(t, graded),
		},
	})

	t.Run("zero is a grade", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, path, getToken(t, f.admin), []byte(`{"grade":0}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		got, err := subRepo.GetSubmission(context.Background(), s.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Grade)
		assert.Zero(t, *got.Grade)
	})
}

func Test_submissionApi_download(t *testing.T) {
	f := createFixtures(t)
	ctx := context.Background()
	a := testutil.CreateAssignment(t, asgRepo, f.course.ID, "HW1", 10, due)

	fileID, err := blobs.Put(ctx, "essay.txt", "text/plain", strings.NewReader("my essay"))
	require.NoError(t, err)
	s := testutil.CreateSubmission(t, subRepo, a.ID, f.student.ID, fileID)
	lost := testutil.CreateSubmission(t, subRepo, a.ID, f.student.ID, "gone")

	runHTTPTests(t, []httpTest{
		{name: "auth required", path: s.FilePath(), wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "unknown", path: "/submissions/unknown/file", token: getToken(t, f.student), wantCode: http.StatusNotFound},
		{name: "other student", path: s.FilePath(), token: getToken(t, f.outsider), wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden)},
		{name: "other instructor", path: s.FilePath(), token: getToken(t, f.otherProf), wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden)},
		{
			name: "missing file", path: lost.FilePath(), token: getToken(t, f.student),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "file not found"}),
		},
	})

	for _, who := range []struct {
		name  string
		token string
	}{
		{"submitter", getToken(t, f.student)},
		{"instructor", getToken(t, f.prof)},
		{"admin", getToken(t, f.admin)},
	} {
		t.Run(who.name+" downloads", func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, s.FilePath(), who.token)
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
			assert.Equal(t, "attachment; filename=essay.txt", rec.Header().Get("Content-Disposition"))
			assert.Equal(t, "8", rec.Header().Get("Content-Length"))
			assert.Equal(t, "my essay", rec.Body.String())
		})
	}

	// the submission survives a missing file
	_, err = subRepo.GetSubmission(ctx, lost.ID)
	require.NoError(t, err)
}
