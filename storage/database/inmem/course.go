package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sabaq/backend/core"
	"github.com/sabaq/backend/core/course"
)

type courseRepository struct {
	db *DB
	t  *courseTables
}

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db, t: db.course}
}

func (repo *courseRepository) QueryCourses(_ context.Context, ordering []core.DBOrdering) ([]course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	courses := make([]course.Course, 0, len(repo.t.courses))
	for _, c := range repo.t.courses {
		courses = append(courses, *c)
	}
	ordering = append(ordering, core.DBOrdering{Field: "id", Ascending: true})
	sort.SliceStable(courses, func(i, j int) bool {
		for _, ord := range ordering {
			cmp := compareCourses(courses[i], courses[j], ord.Field)
			if cmp == 0 {
				continue
			}
			return (cmp < 0) == ord.Ascending
		}
		return false
	})
	return courses, nil
}

func compareCourses(a, b course.Course, field string) int {
	switch field {
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "id":
		return a.ID - b.ID
	}
	return 0
}

func (repo *courseRepository) GetCourse(_ context.Context, id int) (course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if c, ok := repo.t.courses[id]; ok {
		return *c, nil
	}
	return course.Course{}, course.ErrCourseNotFound
}

func (repo *courseRepository) QueryTopics(_ context.Context, courseID int) ([]course.Topic, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	topics := make([]course.Topic, 0)
	for _, t := range repo.t.topics {
		if t.CourseID == courseID {
			topics = append(topics, *t)
		}
	}
	course.SortTopics(topics)
	return topics, nil
}

func (repo *courseRepository) GetTopic(_ context.Context, id int) (course.Topic, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if t, ok := repo.t.topics[id]; ok {
		return *t, nil
	}
	return course.Topic{}, course.ErrTopicNotFound
}

func (repo *courseRepository) GetTest(_ context.Context, id int) (course.Test, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if t, ok := repo.t.tests[id]; ok {
		return *t, nil
	}
	return course.Test{}, course.ErrTestNotFound
}

func (repo *courseRepository) CreateCourse(_ context.Context, content course.CourseContent) (course.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c := content.Course()
	c.ID = repo.db.nextPK()
	repo.t.courses[c.ID] = &c

	for _, tc := range content.Topics {
		topic := tc.Topic(c.ID)
		topic.ID = repo.db.nextPK()
		if tc.Test != nil {
			test := course.Test{ID: repo.db.nextPK(), TopicID: topic.ID, PassingScore: tc.Test.PassingScore}
			for _, qc := range tc.Test.Questions {
				q := course.Question{ID: repo.db.nextPK(), TestID: test.ID, Text: qc.Text}
				for _, ac := range qc.Answers {
					q.Answers = append(q.Answers, course.Answer{
						ID: repo.db.nextPK(), QuestionID: q.ID, Text: ac.Text, IsCorrect: ac.Correct,
					})
				}
				test.Questions = append(test.Questions, q)
			}
			repo.t.tests[test.ID] = &test
			topic.TestID = &test.ID
		}
		repo.t.topics[topic.ID] = &topic
	}
	return c, nil
}

func (repo *courseRepository) QueryEnrolledCourses(_ context.Context, userID int) ([]course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	enrollments := make([]course.Enrollment, 0)
	for _, e := range repo.t.enrollments {
		if e.UserID == userID {
			enrollments = append(enrollments, *e)
		}
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].ID < enrollments[j].ID })

	courses := make([]course.Course, 0, len(enrollments))
	for _, e := range enrollments {
		if c, ok := repo.t.courses[e.CourseID]; ok {
			courses = append(courses, *c)
		}
	}
	return courses, nil
}

func (repo *courseRepository) enrollment(userID, courseID int) *course.Enrollment {
	for _, e := range repo.t.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			return e
		}
	}
	return nil
}

func (repo *courseRepository) IsEnrolled(_ context.Context, userID, courseID int) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.enrollment(userID, courseID) != nil, nil
}

func (repo *courseRepository) Enroll(_ context.Context, userID, courseID int) (course.Enrollment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if e := repo.enrollment(userID, courseID); e != nil {
		return *e, nil
	}
	e := course.Enrollment{ID: repo.db.nextPK(), UserID: userID, CourseID: courseID, EnrolledAt: time.Now().UTC()}
	repo.t.enrollments[e.ID] = &e
	return e, nil
}

func (repo *courseRepository) QueryPassedTests(_ context.Context, userID int, testIDs []int) (map[int]bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	wanted := make(map[int]bool, len(testIDs))
	for _, id := range testIDs {
		wanted[id] = true
	}
	passed := make(map[int]bool)
	for _, r := range repo.t.results {
		if r.UserID == userID && r.Passed && wanted[r.TestID] {
			passed[r.TestID] = true
		}
	}
	return passed, nil
}

func (repo *courseRepository) result(userID, testID int) *course.TestResult {
	for _, r := range repo.t.results {
		if r.UserID == userID && r.TestID == testID {
			return r
		}
	}
	return nil
}

func (repo *courseRepository) GetTestResult(_ context.Context, userID, testID int) (course.TestResult, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if r := repo.result(userID, testID); r != nil {
		return *r, nil
	}
	return course.TestResult{}, course.ErrResultNotFound
}

func (repo *courseRepository) SaveTestResult(_ context.Context, attempt course.TestResult, merge course.MergeFunc) (course.TestResult, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	stored := repo.result(attempt.UserID, attempt.TestID)
	if stored == nil {
		attempt.ID = repo.db.nextPK()
		attempt.CreatedAt = time.Now().UTC()
		repo.t.results[attempt.ID] = &attempt
		return attempt, nil
	}
	if merged, changed := merge(*stored); changed {
		*stored = merged
	}
	return *stored, nil
}
