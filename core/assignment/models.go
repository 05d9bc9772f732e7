package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/courseware/core"
)

type Assignment struct {
	ID       string    `json:"id" bson:"_id"`
	CourseID string    `json:"courseId" bson:"courseId"`
	Title    string    `json:"title" bson:"title"`
	Points   int       `json:"points" bson:"points"`
	Due      time.Time `json:"due" bson:"due"` // UTC
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	CourseID string    `json:"courseId" validate:"required"`
	Title    string    `json:"title" validate:"required,notblank"`
	Points   int       `json:"points" validate:"required,gt=0"`
	Due      time.Time `json:"due" validate:"required"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.CourseID = core.CleanString(na.CourseID)
	na.Title = core.CleanString(na.Title)
	na.Due = na.Due.UTC()
	return validate.Struct(na)
}

// UpdateAssignment defines what may be changed on an existing Assignment.
// The owning course cannot be changed.
type UpdateAssignment struct {
	Title  *string    `json:"title" validate:"omitempty,notblank"`
	Points *int       `json:"points" validate:"omitempty,gt=0"`
	Due    *time.Time `json:"due"`
}

func (ua *UpdateAssignment) Validate(validate *validator.Validate) error {
	if ua.Title != nil {
		*ua.Title = core.CleanString(*ua.Title)
	}
	if ua.Due != nil {
		due := ua.Due.UTC()
		ua.Due = &due
	}
	if ua.Title == nil && ua.Points == nil && ua.Due == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "body", Error: "no updatable field provided"})
	}
	return validate.Struct(ua)
}
