package inmemdb

import (
	"context"

	"github.com/trezcool/courseware/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

func copyCourse(c *course.Course) course.Course {
	cp := *c
	cp.Students = append([]string{}, c.Students...)
	return cp
}

func matchCourse(c *course.Course, filter course.QueryFilter) bool {
	return (filter.Subject == "" || c.Subject == filter.Subject) &&
		(filter.Number == 0 || c.Number == filter.Number) &&
		(filter.Term == "" || c.Term == filter.Term)
}

func (repo *courseRepository) CreateCourse(_ context.Context, c course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if c.ID == "" {
		c.ID = newID()
	}
	if c.Students == nil {
		c.Students = []string{}
	}
	repo.db.table[c.ID] = &c
	return copyCourse(&c), nil
}

func (repo *courseRepository) GetCourse(_ context.Context, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.table[id]; ok {
		return copyCourse(c), nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) CountCourses(_ context.Context, filter course.QueryFilter) (int64, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var n int64
	for _, c := range repo.db.table {
		if matchCourse(c, filter) {
			n++
		}
	}
	return n, nil
}

func (repo *courseRepository) QueryCourses(_ context.Context, filter course.QueryFilter, offset, limit int) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0)
	for _, id := range sortedKeys(repo.db.table) {
		if c := repo.db.table[id]; matchCourse(c, filter) {
			courses = append(courses, c.Summary())
		}
	}
	return window(courses, offset, limit), nil
}

func (repo *courseRepository) UpdateCourse(_ context.Context, id string, uc course.UpdateCourse) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c, ok := repo.db.table[id]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	if uc.Subject != nil {
		c.Subject = *uc.Subject
	}
	if uc.Number != nil {
		c.Number = *uc.Number
	}
	if uc.Title != nil {
		c.Title = *uc.Title
	}
	if uc.Term != nil {
		c.Term = *uc.Term
	}
	if uc.InstructorID != nil {
		c.InstructorID = *uc.InstructorID
	}
	return copyCourse(c), nil
}

func (repo *courseRepository) AddStudents(_ context.Context, id string, studentIDs []string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	c, ok := repo.db.table[id]
	if !ok {
		return course.ErrNotFound
	}
	for _, sid := range studentIDs {
		if !c.HasStudent(sid) {
			c.Students = append(c.Students, sid)
		}
	}
	return nil
}

func (repo *courseRepository) RemoveStudents(_ context.Context, id string, studentIDs []string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	c, ok := repo.db.table[id]
	if !ok {
		return course.ErrNotFound
	}
	removed := make(map[string]bool, len(studentIDs))
	for _, sid := range studentIDs {
		removed[sid] = true
	}
	kept := make([]string, 0, len(c.Students))
	for _, sid := range c.Students {
		if !removed[sid] {
			kept = append(kept, sid)
		}
	}
	c.Students = kept
	return nil
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return course.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func (repo *courseRepository) QueryCourseIDsByInstructor(_ context.Context, instructorID string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ids := make([]string, 0)
	for _, id := range sortedKeys(repo.db.table) {
		if repo.db.table[id].InstructorID == instructorID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (repo *courseRepository) QueryCourseIDsByStudent(_ context.Context, studentID string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ids := make([]string, 0)
	for _, id := range sortedKeys(repo.db.table) {
		if repo.db.table[id].HasStudent(studentID) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
