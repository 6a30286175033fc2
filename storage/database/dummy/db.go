// Package dummydb is an in-memory stand-in for the PostgreSQL storage,
// used by tests. It honors the same unique constraints and sentinel
// errors as the real repositories.
package dummydb

import (
	"sync"

	"github.com/devbenja/colegio/core/school"
	"github.com/devbenja/colegio/core/user"
)

type (
	DB struct {
		mu sync.RWMutex

		users           map[string]*user.User
		grades          map[string]*school.Grade
		subjects        map[string]*school.Subject
		gradeSubjects   map[string]*school.GradeSubject
		teacherSubjects map[string]*school.TeacherSubject
		studentGrades   map[string]*school.StudentGrade
	}
)

func Open() (*DB, error) {
	db := &DB{
		users:           make(map[string]*user.User),
		grades:          make(map[string]*school.Grade),
		subjects:        make(map[string]*school.Subject),
		gradeSubjects:   make(map[string]*school.GradeSubject),
		teacherSubjects: make(map[string]*school.TeacherSubject),
		studentGrades:   make(map[string]*school.StudentGrade),
	}
	return db, nil
}
