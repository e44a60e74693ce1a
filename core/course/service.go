package course

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/sabaq/backend/core"
	"github.com/sabaq/backend/core/user"
)

var (
	ErrCourseNotFound = core.NewNotFoundError("course not found")
	ErrNoTopics       = core.NewNotFoundError("course has no topics")
	ErrTopicNotFound  = core.NewNotFoundError("topic not found")
	ErrTestNotFound   = core.NewNotFoundError("test not found for this topic")
	ErrResultNotFound = core.NewNotFoundError("test result not found")

	ErrNotEnrolled = core.NewForbiddenError("you are not enrolled in this course")
	ErrTopicLocked = core.NewForbiddenError("topic is not unlocked yet")
	ErrCuratorOnly = core.NewForbiddenError("available to curators only")

	ErrNoAnswers = core.NewBadRequestError("answers are required")
)

// DefaultPassingScore is the pass mark of tests without one when none is configured.
const DefaultPassingScore = 9

// orderingFields whitelists the course list ordering fields.
var orderingFields = map[string]bool{"id": true, "title": true}

type (
	ContentRepository interface {
		QueryCourses(ctx context.Context, ordering []core.DBOrdering) ([]Course, error)
		GetCourse(ctx context.Context, id int) (Course, error)
		// QueryTopics returns the course topics sorted (see SortTopics), with TestID filled.
		QueryTopics(ctx context.Context, courseID int) ([]Topic, error)
		GetTopic(ctx context.Context, id int) (Topic, error)
		// GetTest returns the test with its questions and answers, in insertion order.
		GetTest(ctx context.Context, id int) (Test, error)
		// CreateCourse stores the whole content hierarchy at once.
		CreateCourse(ctx context.Context, content CourseContent) (Course, error)
	}

	EnrollmentRepository interface {
		QueryEnrolledCourses(ctx context.Context, userID int) ([]Course, error)
		IsEnrolled(ctx context.Context, userID, courseID int) (bool, error)
		// Enroll is a no-op when the user is already enrolled.
		Enroll(ctx context.Context, userID, courseID int) (Enrollment, error)
	}

	// MergeFunc folds an attempt into the stored ledger entry and reports whether it changed.
	MergeFunc func(stored TestResult) (TestResult, bool)

	LedgerRepository interface {
		// QueryPassedTests reports, among testIDs, the tests the user has passed.
		QueryPassedTests(ctx context.Context, userID int, testIDs []int) (map[int]bool, error)
		GetTestResult(ctx context.Context, userID, testID int) (TestResult, error)
		// SaveTestResult inserts attempt if the user has no entry for the test yet,
		// otherwise applies merge to the locked entry. Both paths are atomic.
		SaveTestResult(ctx context.Context, attempt TestResult, merge MergeFunc) (TestResult, error)
	}

	Repository interface {
		ContentRepository
		EnrollmentRepository
		LedgerRepository
	}

	Options struct {
		// DefaultPassingScore applies to the tests whose passing score is not set.
		// Values <= 0 fall back to the package DefaultPassingScore.
		DefaultPassingScore int
		Logger              core.Logger
	}

	Service struct {
		repo   Repository
		usrSvc *user.Service
		opts   Options
	}
)

func NewService(repo Repository, usrSvc *user.Service, opts Options) *Service {
	if opts.DefaultPassingScore <= 0 {
		opts.DefaultPassingScore = DefaultPassingScore
	}
	return &Service{repo: repo, usrSvc: usrSvc, opts: opts}
}

// ParseOrdering turns "title,-id" into orderings, dropping unknown fields.
func ParseOrdering(s string) []core.DBOrdering {
	var ordering []core.DBOrdering
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		asc := !strings.HasPrefix(f, "-")
		f = strings.TrimPrefix(f, "-")
		if orderingFields[f] {
			ordering = append(ordering, core.DBOrdering{Field: f, Ascending: asc})
		}
	}
	return ordering
}

func (svc *Service) QueryCourses(ctx context.Context, ordering []core.DBOrdering) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, ordering)
}

func (svc *Service) GetCourse(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

// MyCourses returns the courses a student is enrolled in. Other roles get none.
func (svc *Service) MyCourses(ctx context.Context, usr user.User) ([]Course, error) {
	if !usr.IsStudent() {
		return []Course{}, nil
	}
	return svc.repo.QueryEnrolledCourses(ctx, usr.ID)
}

func (svc *Service) Enroll(ctx context.Context, usr user.User, courseID int) (Enrollment, error) {
	if _, err := svc.repo.GetCourse(ctx, courseID); err != nil {
		return Enrollment{}, err
	}
	return svc.repo.Enroll(ctx, usr.ID, courseID)
}

func (svc *Service) checkEnrolled(ctx context.Context, usr user.User, courseID int) error {
	ok, err := svc.repo.IsEnrolled(ctx, usr.ID, courseID)
	if err != nil {
		return errors.Wrap(err, "checking enrollment")
	}
	if !ok {
		return ErrNotEnrolled
	}
	return nil
}

// progress evaluates the user's progress through the course.
func (svc *Service) progress(ctx context.Context, usr user.User, courseID int) ([]Topic, Progress, error) {
	topics, err := svc.repo.QueryTopics(ctx, courseID)
	if err != nil {
		return nil, Progress{}, errors.Wrap(err, "querying topics")
	}
	passed, err := svc.repo.QueryPassedTests(ctx, usr.ID, testIDs(topics))
	if err != nil {
		return nil, Progress{}, errors.Wrap(err, "querying passed tests")
	}
	return topics, Evaluate(topics, func(testID int) bool { return passed[testID] }), nil
}

// CourseTopics lists the topics of a course the user is enrolled in, shaped by unlock state.
func (svc *Service) CourseTopics(ctx context.Context, usr user.User, courseID int) ([]TopicView, error) {
	if err := svc.checkEnrolled(ctx, usr, courseID); err != nil {
		return nil, err
	}
	topics, progress, err := svc.progress(ctx, usr, courseID)
	if err != nil {
		return nil, err
	}
	return TopicViews(topics, progress), nil
}

// PreviewTopics lists the topics of a course for anyone, with only the first one unlocked.
func (svc *Service) PreviewTopics(ctx context.Context, courseID int) ([]TopicView, error) {
	if _, err := svc.repo.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	topics, err := svc.repo.QueryTopics(ctx, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying topics")
	}
	if len(topics) == 0 {
		return nil, ErrNoTopics
	}
	return PreviewViews(topics), nil
}

// TopicDetail returns the full topic content, provided the user unlocked it.
func (svc *Service) TopicDetail(ctx context.Context, usr user.User, topicID int) (TopicDetail, error) {
	topic, err := svc.repo.GetTopic(ctx, topicID)
	if err != nil {
		return TopicDetail{}, err
	}
	if err := svc.checkEnrolled(ctx, usr, topic.CourseID); err != nil {
		return TopicDetail{}, err
	}
	_, progress, err := svc.progress(ctx, usr, topic.CourseID)
	if err != nil {
		return TopicDetail{}, err
	}
	if !progress.IsUnlocked(topic.ID) {
		return TopicDetail{}, ErrTopicLocked
	}

	if !topic.HasTest() {
		return newTopicDetail(topic, nil), nil
	}
	test, err := svc.getTest(ctx, *topic.TestID)
	if err != nil {
		return TopicDetail{}, err
	}
	return newTopicDetail(topic, &test), nil
}

func (svc *Service) getTest(ctx context.Context, id int) (Test, error) {
	test, err := svc.repo.GetTest(ctx, id)
	if err != nil {
		return Test{}, err
	}
	if test.PassingScore <= 0 {
		test.PassingScore = svc.opts.DefaultPassingScore
	}
	return test, nil
}

// SubmitTest grades the answers to the topic test and records the result in the ledger.
func (svc *Service) SubmitTest(ctx context.Context, usr user.User, topicID int, sub Submission) (GradeResult, error) {
	topic, err := svc.repo.GetTopic(ctx, topicID)
	if err != nil {
		if err == ErrTopicNotFound {
			return GradeResult{}, ErrTestNotFound
		}
		return GradeResult{}, err
	}
	if !topic.HasTest() {
		return GradeResult{}, ErrTestNotFound
	}
	if err := svc.checkEnrolled(ctx, usr, topic.CourseID); err != nil {
		return GradeResult{}, err
	}
	if len(sub.Answers) == 0 {
		return GradeResult{}, ErrNoAnswers
	}

	test, err := svc.getTest(ctx, *topic.TestID)
	if err != nil {
		if err == ErrTestNotFound {
			return GradeResult{}, err
		}
		return GradeResult{}, errors.Wrap(err, "getting test")
	}

	res := Grade(test, sub.Answers)
	attempt := TestResult{UserID: usr.ID, TestID: test.ID, Score: res.Score, Passed: res.Passed}
	merge := func(stored TestResult) (TestResult, bool) { return Reconcile(stored, res) }
	if _, err := svc.repo.SaveTestResult(ctx, attempt, merge); err != nil {
		return GradeResult{}, errors.Wrap(err, "saving test result")
	}

	if svc.opts.Logger != nil {
		svc.opts.Logger.Info("test submitted", usr, map[string]interface{}{
			"test_id": test.ID, "score": res.Score, "passed": res.Passed,
		})
	}
	return res, nil
}

type (
	CourseProgress struct {
		CourseID     int    `json:"course_id"`
		CourseTitle  string `json:"course_title"`
		PassedTopics int    `json:"passed_topics"`
		TotalTopics  int    `json:"total_topics"`
	}

	StudentProgress struct {
		StudentID   int              `json:"student_id"`
		StudentName string           `json:"student_name"`
		Courses     []CourseProgress `json:"courses"`
	}
)

// CuratorProgress reports, for every student of the curator, how far they went
// in each of their courses.
func (svc *Service) CuratorProgress(ctx context.Context, curator user.User) ([]StudentProgress, error) {
	if !curator.IsCurator() {
		return nil, ErrCuratorOnly
	}
	students, err := svc.usrSvc.StudentsOf(ctx, curator)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}

	report := make([]StudentProgress, 0, len(students))
	for _, s := range students {
		courses, err := svc.repo.QueryEnrolledCourses(ctx, s.ID)
		if err != nil {
			return nil, errors.Wrap(err, "querying enrolled courses")
		}
		sp := StudentProgress{StudentID: s.ID, StudentName: s.Name, Courses: make([]CourseProgress, 0, len(courses))}
		for _, c := range courses {
			topics, progress, err := svc.progress(ctx, s, c.ID)
			if err != nil {
				return nil, err
			}
			sp.Courses = append(sp.Courses, CourseProgress{
				CourseID:     c.ID,
				CourseTitle:  c.Title,
				PassedTopics: progress.Cleared,
				TotalTopics:  len(topics),
			})
		}
		report = append(report, sp)
	}
	return report, nil
}

// ImportCourse validates and stores a whole course hierarchy.
func (svc *Service) ImportCourse(ctx context.Context, validate *validator.Validate, content CourseContent) (Course, error) {
	if err := content.Validate(validate); err != nil {
		return Course{}, err
	}
	return svc.repo.CreateCourse(ctx, content)
}
