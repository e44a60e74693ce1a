package sqlxrepos_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabaq/backend/core"
	"github.com/sabaq/backend/core/course"
	"github.com/sabaq/backend/core/user"
	"github.com/sabaq/backend/storage/database/sqlx"
	"github.com/sabaq/backend/tests"
)

func TestRepositories(t *testing.T) {
	db := testutil.PrepareDB(t)
	usrRepo := sqlxrepos.NewUserRepository(db)
	repo := sqlxrepos.NewCourseRepository(db)
	ctx := context.Background()

	curator := testutil.CreateUser(t, usrRepo, "Curator", "curator", user.RoleCurator)
	student := testutil.CreateUser(t, usrRepo, "Student", "student", user.RoleStudent, curator)
	other := testutil.CreateUser(t, usrRepo, "Other", "other", user.RoleStudent, curator)

	crs, topics := testutil.CreateCourse(t, repo, "Algebra",
		testutil.TopicContent("t2", 2, testutil.TestContent(0, 2)),
		testutil.TopicContent("t1", 1, testutil.TestContent(2, 3)),
		testutil.TopicContent("t1 bis", 1, nil),
	)

	t.Run("users", func(t *testing.T) {
		got, err := usrRepo.GetUser(ctx, user.GetFilter{Username: "student"})
		require.NoError(t, err)
		assert.Equal(t, student.ID, got.ID)
		assert.Equal(t, curator.ID, *got.CuratorID)
		assert.True(t, got.CreatedAt.Equal(student.CreatedAt))

		_, err = usrRepo.GetUser(ctx, user.GetFilter{ID: 9999})
		assert.Equal(t, user.ErrNotFound, err)

		_, err = usrRepo.CreateUser(ctx, user.User{Username: "student", Name: "Dup", Role: user.RoleStudent})
		assert.Equal(t, user.ErrUserExists, err)

		students, err := usrRepo.QueryStudents(ctx, curator.ID)
		require.NoError(t, err)
		require.Len(t, students, 2)
		assert.Equal(t, []int{student.ID, other.ID}, []int{students[0].ID, students[1].ID})
	})

	t.Run("content", func(t *testing.T) {
		require.Len(t, topics, 3)
		assert.Equal(t, []string{"t1", "t1 bis", "t2"}, []string{topics[0].Title, topics[1].Title, topics[2].Title})
		assert.True(t, topics[0].HasTest())
		assert.False(t, topics[1].HasTest())

		topic, err := repo.GetTopic(ctx, topics[2].ID)
		require.NoError(t, err)
		assert.Equal(t, topics[2], topic)

		test, err := repo.GetTest(ctx, *topics[2].TestID)
		require.NoError(t, err)
		assert.Equal(t, 0, test.PassingScore) // not set
		require.Len(t, test.Questions, 2)
		assert.Equal(t, "question 1", test.Questions[0].Text)
		require.Len(t, test.Questions[0].Answers, 2)
		assert.True(t, test.Questions[0].Answers[0].IsCorrect)

		_, err = repo.GetTopic(ctx, 9999)
		assert.Equal(t, course.ErrTopicNotFound, err)
		_, err = repo.GetTest(ctx, 9999)
		assert.Equal(t, course.ErrTestNotFound, err)
		_, err = repo.GetCourse(ctx, 9999)
		assert.Equal(t, course.ErrCourseNotFound, err)

		geo, _ := testutil.CreateCourse(t, repo, "Geometry")
		courses, err := repo.QueryCourses(ctx, []core.DBOrdering{{Field: "title", Ascending: false}})
		require.NoError(t, err)
		assert.Equal(t, []course.Course{geo, crs}, courses)
	})

	t.Run("enrollments", func(t *testing.T) {
		ok, err := repo.IsEnrolled(ctx, student.ID, crs.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		e1, err := repo.Enroll(ctx, student.ID, crs.ID)
		require.NoError(t, err)
		e2, err := repo.Enroll(ctx, student.ID, crs.ID)
		require.NoError(t, err)
		assert.Equal(t, e1.ID, e2.ID)

		ok, err = repo.IsEnrolled(ctx, student.ID, crs.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		courses, err := repo.QueryEnrolledCourses(ctx, student.ID)
		require.NoError(t, err)
		assert.Equal(t, []course.Course{crs}, courses)
	})

	t.Run("ledger", func(t *testing.T) {
		testID := *topics[0].TestID
		merge := func(res course.GradeResult) course.MergeFunc {
			return func(stored course.TestResult) (course.TestResult, bool) { return course.Reconcile(stored, res) }
		}
		save := func(score int, passed bool) course.TestResult {
			r, err := repo.SaveTestResult(ctx,
				course.TestResult{UserID: student.ID, TestID: testID, Score: score, Passed: passed},
				merge(course.GradeResult{Score: score, Passed: passed}),
			)
			require.NoError(t, err)
			return r
		}

		first := save(1, false)
		assert.Equal(t, 1, first.Score)
		assert.Equal(t, first.ID, save(0, false).ID)

		passed, err := repo.QueryPassedTests(ctx, student.ID, []int{testID})
		require.NoError(t, err)
		assert.Empty(t, passed)

		save(2, true)
		r := save(1, false)
		assert.True(t, r.Passed)
		assert.Equal(t, 2, r.Score)

		passed, err = repo.QueryPassedTests(ctx, student.ID, []int{testID, *topics[2].TestID})
		require.NoError(t, err)
		assert.Equal(t, map[int]bool{testID: true}, passed)

		stored, err := repo.GetTestResult(ctx, student.ID, testID)
		require.NoError(t, err)
		assert.Equal(t, r.ID, stored.ID)
		assert.Equal(t, 2, stored.Score)
		assert.True(t, stored.Passed)

		_, err = repo.GetTestResult(ctx, other.ID, testID)
		assert.Equal(t, course.ErrResultNotFound, err)
	})

	t.Run("concurrent submissions", func(t *testing.T) {
		testID := *topics[2].TestID
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(score int) {
				defer wg.Done()
				res := course.GradeResult{Score: score, Passed: score >= 2}
				_, err := repo.SaveTestResult(ctx,
					course.TestResult{UserID: other.ID, TestID: testID, Score: res.Score, Passed: res.Passed},
					func(stored course.TestResult) (course.TestResult, bool) { return course.Reconcile(stored, res) },
				)
				assert.NoError(t, err)
			}(i % 3)
		}
		wg.Wait()

		r, err := repo.GetTestResult(ctx, other.ID, testID)
		require.NoError(t, err)
		assert.True(t, r.Passed)
		assert.Equal(t, 2, r.Score)
	})

	t.Run("configured default passing score", func(t *testing.T) {
		third := testutil.CreateUser(t, usrRepo, "Third", "third", user.RoleStudent)
		trig, trigTopics := testutil.CreateCourse(t, repo, "Trigonometry",
			testutil.TopicContent("sines", 1, testutil.TestContent(0, 3)),
			testutil.TopicContent("cosines", 2, nil),
		)
		testutil.Enroll(t, repo, third, trig)
		svc := course.NewService(repo, user.NewService(usrRepo), course.Options{DefaultPassingScore: 2})

		test, err := repo.GetTest(ctx, *trigTopics[0].TestID)
		require.NoError(t, err)
		sub := course.Submission{}
		for i, q := range test.Questions {
			ans := q.Answers[1]
			if i < 2 {
				ans = q.Answers[0]
			}
			sub.Answers = append(sub.Answers, course.SubmittedAnswer{QuestionID: q.ID, AnswerID: ans.ID})
		}

		res, err := svc.SubmitTest(ctx, third, trigTopics[0].ID, sub)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Score)
		assert.True(t, res.Passed)

		views, err := svc.CourseTopics(ctx, third, trig.ID)
		require.NoError(t, err)
		require.Len(t, views, 2)
		assert.IsType(t, course.UnlockedTopicView{}, views[1])
	})
}
