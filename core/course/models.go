package course

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/courseware/core"
)

type Course struct {
	ID           string   `json:"id" bson:"_id"`
	Subject      string   `json:"subject" bson:"subject"`
	Number       int      `json:"number" bson:"number"`
	Title        string   `json:"title" bson:"title"`
	Term         string   `json:"term" bson:"term"`
	InstructorID string   `json:"instructorId" bson:"instructorId"`
	Students     []string `json:"students,omitempty" bson:"students"`
}

// Summary returns the course without its enrolled students.
func (c Course) Summary() Course {
	c.Students = nil
	return c
}

func (c Course) HasStudent(id string) bool {
	for _, sid := range c.Students {
		if sid == id {
			return true
		}
	}
	return false
}

// NewCourse contains information needed to create a new Course.
// Students can only be set through enrollment.
type NewCourse struct {
	Subject      string `json:"subject" validate:"required,notblank"`
	Number       int    `json:"number" validate:"required,gt=0"`
	Title        string `json:"title" validate:"required,notblank"`
	Term         string `json:"term" validate:"required,notblank"`
	InstructorID string `json:"instructorId" validate:"required"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Subject = core.CleanString(nc.Subject)
	nc.Title = core.CleanString(nc.Title)
	nc.Term = core.CleanString(nc.Term)
	nc.InstructorID = core.CleanString(nc.InstructorID)
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
// Absent fields are left untouched.
type UpdateCourse struct {
	Subject      *string `json:"subject" validate:"omitempty,notblank"`
	Number       *int    `json:"number" validate:"omitempty,gt=0"`
	Title        *string `json:"title" validate:"omitempty,notblank"`
	Term         *string `json:"term" validate:"omitempty,notblank"`
	InstructorID *string `json:"instructorId" validate:"omitempty,notblank"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	for _, s := range []*string{uc.Subject, uc.Title, uc.Term, uc.InstructorID} {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
	if uc.IsEmpty() {
		return core.NewValidationError(nil, core.FieldError{Field: "body", Error: "no updatable field provided"})
	}
	return validate.Struct(uc)
}

func (uc *UpdateCourse) IsEmpty() bool {
	return uc.Subject == nil && uc.Number == nil && uc.Title == nil && uc.Term == nil && uc.InstructorID == nil
}

// EnrollmentUpdate lists the students to add to & remove from a Course.
type EnrollmentUpdate struct {
	Add    []string `json:"add" validate:"omitempty,dive,required"`
	Remove []string `json:"remove" validate:"omitempty,dive,required"`
}

func (eu *EnrollmentUpdate) Validate(validate *validator.Validate) error {
	eu.Add = core.UniqueStrings(eu.Add)
	eu.Remove = core.UniqueStrings(eu.Remove)
	if len(eu.Add) == 0 && len(eu.Remove) == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "body", Error: "one of add or remove is required"})
	}
	return validate.Struct(eu)
}

type QueryFilter struct {
	Subject string `query:"subject"`
	Number  int    `query:"number"`
	Term    string `query:"term"`
}

func (qf *QueryFilter) Clean() {
	qf.Subject = core.CleanString(qf.Subject)
	qf.Term = core.CleanString(qf.Term)
}

// Page is one page of courses, as served by GET /courses.
type Page struct {
	Courses []Course `json:"courses"`
	core.Pagination
	Links core.Links `json:"links"`
}
