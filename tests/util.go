package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/sabaq/backend/core/course"
	"github.com/sabaq/backend/core/user"
	"github.com/sabaq/backend/storage/database"
)

func CreateUser(t *testing.T, repo user.Repository, name, uname, role string, curator ...user.User) user.User {
	t.Helper()
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     uname + "@test.cd",
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	if len(curator) > 0 {
		usr.CuratorID = &curator[0].ID
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

// TestContent returns a test with n questions. Question i has two answers,
// "right i" (correct) then "wrong i".
func TestContent(passingScore, n int) *course.TestContent {
	tc := &course.TestContent{PassingScore: passingScore}
	for i := 1; i <= n; i++ {
		tc.Questions = append(tc.Questions, course.QuestionContent{
			Text: fmt.Sprintf("question %d", i),
			Answers: []course.AnswerContent{
				{Text: fmt.Sprintf("right %d", i), Correct: true},
				{Text: fmt.Sprintf("wrong %d", i)},
			},
		})
	}
	return tc
}

// TopicContent returns a topic, with a test when test is not nil.
func TopicContent(title string, order int, test *course.TestContent) course.TopicContent {
	duration := 10
	return course.TopicContent{
		Title:             title,
		Order:             order,
		VideoURL:          "https://video.test.cd/" + title,
		VideoTitle:        title + " video",
		DurationInMinutes: &duration,
		Test:              test,
	}
}

// CreateCourse stores the course hierarchy and returns it with its sorted topics.
func CreateCourse(t *testing.T, repo course.ContentRepository, title string, topics ...course.TopicContent) (course.Course, []course.Topic) {
	t.Helper()
	ctx := context.Background()
	crs, err := repo.CreateCourse(ctx, course.CourseContent{Title: title, Description: title + " description", Topics: topics})
	if err != nil {
		t.Fatalf("CreateCourse(): %v", err)
	}
	stored, err := repo.QueryTopics(ctx, crs.ID)
	if err != nil {
		t.Fatalf("QueryTopics(): %v", err)
	}
	return crs, stored
}

func Enroll(t *testing.T, repo course.EnrollmentRepository, usr user.User, crs course.Course) {
	t.Helper()
	if _, err := repo.Enroll(context.Background(), usr.ID, crs.ID); err != nil {
		t.Fatalf("Enroll(): %v", err)
	}
}

// PrepareDB starts a throwaway Postgres container and returns the migrated database.
// The test is skipped with -short or when no container provider is available.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("sabaq_test"),
		postgres.WithUsername("sabaq"),
		postgres.WithPassword("sabaq"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("postgres.Run(): %v", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("ConnectionString(): %v", err)
	}
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("sqlx.Open(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Ping(ctx, db.DB); err != nil {
		t.Fatalf("Ping(): %v", err)
	}
	if err = database.Migrate(db.DB, "up"); err != nil {
		t.Fatalf("Migrate(): %v", err)
	}
	return db
}
