// Package testutil holds fixtures shared by the test suites.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/trezcool/courseware/core"
	"github.com/trezcool/courseware/core/assignment"
	"github.com/trezcool/courseware/core/course"
	"github.com/trezcool/courseware/core/submission"
	"github.com/trezcool/courseware/core/user"
)

// DefaultPassword satisfies the password policy for users created with CreateUser.
const DefaultPassword = "correct-horse-42"

func CreateUser(t *testing.T, repo user.Repository, name, email, role string, createdAt ...time.Time) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
	}
	if err := usr.SetPassword(DefaultPassword); err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func CreateCourse(
	t *testing.T,
	repo course.Repository,
	subject string,
	number int,
	title, term, instructorID string,
	students ...string,
) course.Course {
	t.Helper()

	c, err := repo.CreateCourse(context.Background(), course.Course{
		Subject:      subject,
		Number:       number,
		Title:        title,
		Term:         term,
		InstructorID: instructorID,
	})
	if err != nil {
		t.Fatalf("CreateCourse(): %v", err)
	}
	if len(students) > 0 {
		if err = repo.AddStudents(context.Background(), c.ID, students); err != nil {
			t.Fatalf("CreateCourse(): %v", err)
		}
		c.Students = append(c.Students, students...)
	}
	return c
}

func CreateAssignment(t *testing.T, repo assignment.Repository, courseID, title string, points int, due time.Time) assignment.Assignment {
	t.Helper()

	a, err := repo.CreateAssignment(context.Background(), assignment.Assignment{
		CourseID: courseID,
		Title:    title,
		Points:   points,
		Due:      due.UTC(),
	})
	if err != nil {
		t.Fatalf("CreateAssignment(): %v", err)
	}
	return a
}

func CreateSubmission(t *testing.T, repo submission.Repository, assignmentID, studentID, fileID string) submission.Submission {
	t.Helper()

	s, err := repo.CreateSubmission(context.Background(), submission.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Timestamp:    time.Now().UTC(),
		FileID:       fileID,
		FileName:     "essay.txt",
		ContentType:  "text/plain",
	})
	if err != nil {
		t.Fatalf("CreateSubmission(): %v", err)
	}
	return s
}

// EventRecorder is a core.EventPublisher keeping published events in memory.
type EventRecorder struct {
	mu     sync.Mutex
	events []core.Event
	Err    error
}

func (r *EventRecorder) Publish(_ context.Context, events ...core.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return r.Err
}

// Types returns the types of the recorded events, in publication order.
func (r *EventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}
