package cache

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabaq/backend/core"
	"github.com/sabaq/backend/core/course"
	"github.com/sabaq/backend/storage/database/inmem"
	"github.com/sabaq/backend/tests"
)

type fakeClient struct {
	mu   sync.Mutex
	data map[string]string
	down bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{data: make(map[string]string)}
}

func (c *fakeClient) Get(_ context.Context, key string) *redis.StringCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return redis.NewStringResult("", assert.AnError)
	}
	val, ok := c.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (c *fakeClient) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return redis.NewStatusResult("", assert.AnError)
	}
	c.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (c *fakeClient) Incr(_ context.Context, key string) *redis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return redis.NewIntResult(0, assert.AnError)
	}
	n, _ := strconv.Atoi(c.data[key])
	n++
	c.data[key] = strconv.Itoa(n)
	return redis.NewIntResult(int64(n), nil)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

var _ core.Logger = nopLogger{}

func setup() (course.Repository, course.Repository, *fakeClient) {
	inner := inmemdb.NewCourseRepository(inmemdb.Open())
	client := newFakeClient()
	return NewContentRepository(inner, client, time.Minute, nopLogger{}), inner, client
}

func TestContentRepository_QueryTopics(t *testing.T) {
	repo, _, client := setup()
	ctx := context.Background()

	crs, topics := testutil.CreateCourse(t, repo, "Algebra",
		testutil.TopicContent("t1", 1, testutil.TestContent(1, 1)),
		testutil.TopicContent("t2", 2, nil),
	)
	assert.Len(t, client.data, 2) // generation + topics

	got, err := repo.QueryTopics(ctx, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, topics, got)
	assert.Len(t, client.data, 2)
}

func TestContentRepository_invalidation(t *testing.T) {
	repo, inner, _ := setup()
	ctx := context.Background()

	courses, err := repo.QueryCourses(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, courses)

	// writes behind the cache's back are not seen...
	_, err = inner.CreateCourse(ctx, course.CourseContent{Title: "Hidden"})
	require.NoError(t, err)
	courses, err = repo.QueryCourses(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, courses)

	// ...until the content changes through the cache
	_, err = repo.CreateCourse(ctx, course.CourseContent{Title: "Visible"})
	require.NoError(t, err)
	courses, err = repo.QueryCourses(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, courses, 2)
}

func TestContentRepository_GetCourse(t *testing.T) {
	repo, _, client := setup()
	ctx := context.Background()

	_, err := repo.GetCourse(ctx, 42)
	assert.Equal(t, course.ErrCourseNotFound, err)
	assert.Empty(t, client.data)

	crs, _ := testutil.CreateCourse(t, repo, "Algebra")
	got, err := repo.GetCourse(ctx, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, crs, got)
}

func TestContentRepository_cacheDown(t *testing.T) {
	repo, _, client := setup()
	ctx := context.Background()
	crs, _ := testutil.CreateCourse(t, repo, "Algebra")

	client.down = true
	got, err := repo.GetCourse(ctx, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, crs, got)

	_, err = repo.CreateCourse(ctx, course.CourseContent{Title: "Geometry"})
	assert.NoError(t, err)
}

func Test_orderingKey(t *testing.T) {
	assert.Equal(t, "title_ASC,id_DESC", orderingKey([]core.DBOrdering{{Field: "title", Ascending: true}, {Field: "id"}}))
	assert.Equal(t, "", orderingKey(nil))
}
