package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/sabaq/backend/core"
	"github.com/sabaq/backend/core/course"
)

var (
	courseColumns = []string{"id", "title", "description", "course_type", "sub_type", "img"}
	topicColumns  = []string{
		"topics.id", "topics.course_id", "topics.title", `topics."order"`, "topics.video_url",
		"topics.video_title", "topics.duration_in_minutes", "tests.id AS test_id",
	}
	resultColumns = []string{"id", "user_id", "test_id", "score", "passed", "created_at"}
)

type courseRepository struct {
	db *sqlx.DB
}

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) QueryCourses(ctx context.Context, ordering []core.DBOrdering) ([]course.Course, error) {
	qb := psql.Select(courseColumns...).From("courses")
	for _, ord := range ordering {
		qb = qb.OrderBy(ord.String())
	}
	q, args, err := qb.OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	courses := make([]course.Course, 0)
	if err = repo.db.SelectContext(ctx, &courses, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}
	return courses, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id int) (course.Course, error) {
	q, args, err := psql.Select(courseColumns...).From("courses").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return course.Course{}, errors.Wrap(err, "building query")
	}
	var c course.Course
	if err = repo.db.GetContext(ctx, &c, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrCourseNotFound
		}
		return course.Course{}, errors.Wrap(err, "selecting course")
	}
	return c, nil
}

func selectTopics() sq.SelectBuilder {
	return psql.Select(topicColumns...).From("topics").LeftJoin("tests ON tests.topic_id = topics.id")
}

func (repo *courseRepository) QueryTopics(ctx context.Context, courseID int) ([]course.Topic, error) {
	q, args, err := selectTopics().
		Where(sq.Eq{"topics.course_id": courseID}).
		OrderBy(`topics."order" ASC`, "topics.id ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	topics := make([]course.Topic, 0)
	if err = repo.db.SelectContext(ctx, &topics, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting topics")
	}
	return topics, nil
}

func (repo *courseRepository) GetTopic(ctx context.Context, id int) (course.Topic, error) {
	q, args, err := selectTopics().Where(sq.Eq{"topics.id": id}).ToSql()
	if err != nil {
		return course.Topic{}, errors.Wrap(err, "building query")
	}
	var t course.Topic
	if err = repo.db.GetContext(ctx, &t, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return course.Topic{}, course.ErrTopicNotFound
		}
		return course.Topic{}, errors.Wrap(err, "selecting topic")
	}
	return t, nil
}

func (repo *courseRepository) GetTest(ctx context.Context, id int) (course.Test, error) {
	q, args, err := psql.Select("id", "topic_id", "passing_score").From("tests").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return course.Test{}, errors.Wrap(err, "building query")
	}
	var test course.Test
	if err = repo.db.GetContext(ctx, &test, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return course.Test{}, course.ErrTestNotFound
		}
		return course.Test{}, errors.Wrap(err, "selecting test")
	}

	q, args, err = psql.Select("id", "test_id", "text").From("questions").
		Where(sq.Eq{"test_id": id}).OrderBy("id ASC").ToSql()
	if err != nil {
		return course.Test{}, errors.Wrap(err, "building query")
	}
	if err = repo.db.SelectContext(ctx, &test.Questions, q, args...); err != nil {
		return course.Test{}, errors.Wrap(err, "selecting questions")
	}
	if len(test.Questions) == 0 {
		return test, nil
	}

	qIdx := make(map[int]int, len(test.Questions))
	qIDs := make([]int, 0, len(test.Questions))
	for i, qst := range test.Questions {
		qIdx[qst.ID] = i
		qIDs = append(qIDs, qst.ID)
	}
	q, args, err = psql.Select("id", "question_id", "text", "is_correct").From("answers").
		Where(sq.Eq{"question_id": qIDs}).OrderBy("id ASC").ToSql()
	if err != nil {
		return course.Test{}, errors.Wrap(err, "building query")
	}
	var answers []course.Answer
	if err = repo.db.SelectContext(ctx, &answers, q, args...); err != nil {
		return course.Test{}, errors.Wrap(err, "selecting answers")
	}
	for _, a := range answers {
		i := qIdx[a.QuestionID]
		test.Questions[i].Answers = append(test.Questions[i].Answers, a)
	}
	return test, nil
}

func insertReturningID(ctx context.Context, tx *sqlx.Tx, ib sq.InsertBuilder) (int, error) {
	q, args, err := ib.Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	var id int
	err = tx.QueryRowxContext(ctx, q, args...).Scan(&id)
	return id, err
}

func (repo *courseRepository) CreateCourse(ctx context.Context, content course.CourseContent) (course.Course, error) {
	c := content.Course()
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var err error
		c.ID, err = insertReturningID(ctx, tx, psql.Insert("courses").
			Columns("title", "description", "course_type", "sub_type", "img").
			Values(c.Title, c.Description, c.CourseType, c.SubType, c.Img))
		if err != nil {
			return errors.Wrap(err, "inserting course")
		}

		for _, tc := range content.Topics {
			t := tc.Topic(c.ID)
			topicID, err := insertReturningID(ctx, tx, psql.Insert("topics").
				Columns("course_id", "title", `"order"`, "video_url", "video_title", "duration_in_minutes").
				Values(t.CourseID, t.Title, t.Order, t.VideoURL, t.VideoTitle, t.DurationInMinutes))
			if err != nil {
				return errors.Wrap(err, "inserting topic")
			}
			if tc.Test != nil {
				if err = insertTest(ctx, tx, topicID, *tc.Test); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return course.Course{}, err
	}
	return c, nil
}

func insertTest(ctx context.Context, tx *sqlx.Tx, topicID int, tc course.TestContent) error {
	// 0 stores "not set"; the service resolves it to the configured default
	testID, err := insertReturningID(ctx, tx, psql.Insert("tests").
		Columns("topic_id", "passing_score").Values(topicID, tc.PassingScore))
	if err != nil {
		return errors.Wrap(err, "inserting test")
	}

	for _, qc := range tc.Questions {
		questionID, err := insertReturningID(ctx, tx, psql.Insert("questions").
			Columns("test_id", "text").Values(testID, qc.Text))
		if err != nil {
			return errors.Wrap(err, "inserting question")
		}
		ib := psql.Insert("answers").Columns("question_id", "text", "is_correct")
		for _, ac := range qc.Answers {
			ib = ib.Values(questionID, ac.Text, ac.Correct)
		}
		q, args, err := ib.ToSql()
		if err != nil {
			return errors.Wrap(err, "building query")
		}
		if _, err = tx.ExecContext(ctx, q, args...); err != nil {
			return errors.Wrap(err, "inserting answers")
		}
	}
	return nil
}

func (repo *courseRepository) QueryEnrolledCourses(ctx context.Context, userID int) ([]course.Course, error) {
	cols := make([]string, 0, len(courseColumns))
	for _, col := range courseColumns {
		cols = append(cols, "courses."+col)
	}
	q, args, err := psql.Select(cols...).From("enrollments").
		Join("courses ON courses.id = enrollments.course_id").
		Where(sq.Eq{"enrollments.user_id": userID}).
		OrderBy("enrollments.id ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	courses := make([]course.Course, 0)
	if err = repo.db.SelectContext(ctx, &courses, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting enrolled courses")
	}
	return courses, nil
}

func (repo *courseRepository) IsEnrolled(ctx context.Context, userID, courseID int) (bool, error) {
	q, args, err := psql.Select("COUNT(*)").From("enrollments").
		Where(sq.Eq{"user_id": userID, "course_id": courseID}).ToSql()
	if err != nil {
		return false, errors.Wrap(err, "building query")
	}
	var n int
	if err = repo.db.GetContext(ctx, &n, q, args...); err != nil {
		return false, errors.Wrap(err, "checking enrollment")
	}
	return n > 0, nil
}

func (repo *courseRepository) Enroll(ctx context.Context, userID, courseID int) (course.Enrollment, error) {
	q, args, err := psql.Insert("enrollments").
		Columns("user_id", "course_id").Values(userID, courseID).
		Suffix("ON CONFLICT (user_id, course_id) DO NOTHING").
		ToSql()
	if err != nil {
		return course.Enrollment{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return course.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}

	q, args, err = psql.Select("id", "user_id", "course_id", "enrolled_at").From("enrollments").
		Where(sq.Eq{"user_id": userID, "course_id": courseID}).ToSql()
	if err != nil {
		return course.Enrollment{}, errors.Wrap(err, "building query")
	}
	var e course.Enrollment
	if err = repo.db.GetContext(ctx, &e, q, args...); err != nil {
		return course.Enrollment{}, errors.Wrap(err, "selecting enrollment")
	}
	return e, nil
}

func (repo *courseRepository) QueryPassedTests(ctx context.Context, userID int, testIDs []int) (map[int]bool, error) {
	passed := make(map[int]bool)
	if len(testIDs) == 0 {
		return passed, nil
	}
	q, args, err := psql.Select("test_id").From("test_results").
		Where(sq.Eq{"user_id": userID, "test_id": testIDs, "passed": true}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var ids []int
	if err = repo.db.SelectContext(ctx, &ids, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting passed tests")
	}
	for _, id := range ids {
		passed[id] = true
	}
	return passed, nil
}

func (repo *courseRepository) GetTestResult(ctx context.Context, userID, testID int) (course.TestResult, error) {
	q, args, err := psql.Select(resultColumns...).From("test_results").
		Where(sq.Eq{"user_id": userID, "test_id": testID}).ToSql()
	if err != nil {
		return course.TestResult{}, errors.Wrap(err, "building query")
	}
	var r course.TestResult
	if err = repo.db.GetContext(ctx, &r, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return course.TestResult{}, course.ErrResultNotFound
		}
		return course.TestResult{}, errors.Wrap(err, "selecting test result")
	}
	return r, nil
}

// SaveTestResult inserts the attempt unless an entry exists, in which case the entry
// row is locked (FOR UPDATE) until the merged values are written.
func (repo *courseRepository) SaveTestResult(ctx context.Context, attempt course.TestResult, merge course.MergeFunc) (course.TestResult, error) {
	var saved course.TestResult
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		q, args, err := psql.Insert("test_results").
			Columns("user_id", "test_id", "score", "passed").
			Values(attempt.UserID, attempt.TestID, attempt.Score, attempt.Passed).
			Suffix("ON CONFLICT (user_id, test_id) DO NOTHING RETURNING " + strings.Join(resultColumns, ", ")).
			ToSql()
		if err != nil {
			return errors.Wrap(err, "building query")
		}
		err = tx.GetContext(ctx, &saved, q, args...)
		if err == nil {
			return nil
		}
		if err != sql.ErrNoRows {
			return errors.Wrap(err, "inserting test result")
		}

		q, args, err = psql.Select(resultColumns...).From("test_results").
			Where(sq.Eq{"user_id": attempt.UserID, "test_id": attempt.TestID}).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return errors.Wrap(err, "building query")
		}
		var stored course.TestResult
		if err = tx.GetContext(ctx, &stored, q, args...); err != nil {
			return errors.Wrap(err, "locking test result")
		}

		merged, changed := merge(stored)
		saved = merged
		if !changed {
			return nil
		}
		q, args, err = psql.Update("test_results").
			Set("score", merged.Score).
			Set("passed", merged.Passed).
			Where(sq.Eq{"id": stored.ID}).
			ToSql()
		if err != nil {
			return errors.Wrap(err, "building query")
		}
		_, err = tx.ExecContext(ctx, q, args...)
		return errors.Wrap(err, "updating test result")
	})
	if err != nil {
		return course.TestResult{}, err
	}
	return saved, nil
}
