package inmemdb

import (
	"sync"

	"github.com/sabaq/backend/core/course"
	"github.com/sabaq/backend/core/user"
)

type (
	// DB keeps every table behind a single lock, so each repository call is one critical section.
	DB struct {
		mu     sync.RWMutex
		pk     int
		user   map[int]*user.User
		course *courseTables
	}

	courseTables struct {
		courses     map[int]*course.Course
		topics      map[int]*course.Topic
		tests       map[int]*course.Test // questions & answers included
		enrollments map[int]*course.Enrollment
		results     map[int]*course.TestResult
	}
)

func Open() *DB {
	return &DB{
		user: make(map[int]*user.User),
		course: &courseTables{
			courses:     make(map[int]*course.Course),
			topics:      make(map[int]*course.Topic),
			tests:       make(map[int]*course.Test),
			enrollments: make(map[int]*course.Enrollment),
			results:     make(map[int]*course.TestResult),
		},
	}
}

// nextPK must be called with the write lock held.
func (db *DB) nextPK() int {
	db.pk++
	return db.pk
}
