package submission

import (
	"io"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/courseware/core"
)

type Submission struct {
	ID           string    `json:"id" bson:"_id"`
	AssignmentID string    `json:"assignmentId" bson:"assignmentId"`
	StudentID    string    `json:"studentId" bson:"studentId"`
	Timestamp    time.Time `json:"timestamp" bson:"timestamp"` // UTC
	Grade        *float64  `json:"grade,omitempty" bson:"grade,omitempty"`
	FileID       string    `json:"-" bson:"fileId"`
	FileName     string    `json:"fileName" bson:"fileName"`
	ContentType  string    `json:"contentType" bson:"contentType"`
	File         string    `json:"file" bson:"-"`
}

// FilePath is where the submitted file can be downloaded from.
func (s Submission) FilePath() string {
	return "/submissions/" + url.PathEscape(s.ID) + "/file"
}

func (s Submission) withFile() Submission {
	s.File = s.FilePath()
	return s
}

// NewSubmission contains information needed to create a new Submission.
// StudentID is always the authenticated caller.
type NewSubmission struct {
	AssignmentID string
	StudentID    string
	FileName     string
	ContentType  string
	File         io.Reader
}

// GradeSubmission sets the grade of a Submission.
type GradeSubmission struct {
	Grade *float64 `json:"grade" validate:"required,gte=0"`
}

func (gs *GradeSubmission) Validate(validate *validator.Validate) error {
	return validate.Struct(gs)
}

type QueryFilter struct {
	AssignmentID string `query:"-"`
	StudentID    string `query:"studentId"`
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID)
}

func (qf QueryFilter) values() url.Values {
	v := make(url.Values)
	if qf.StudentID != "" {
		v.Set("studentId", qf.StudentID)
	}
	return v
}

// Page is one page of an assignment's submissions.
type Page struct {
	Submissions []Submission `json:"submissions"`
	core.Pagination
	Links core.Links `json:"links"`
}
