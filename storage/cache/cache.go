// Package cache keeps the read-mostly course content in Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/sabaq/backend/core"
	"github.com/sabaq/backend/core/course"
)

const (
	keyPrefix     = "sabaq:content:"
	generationKey = keyPrefix + "gen"
)

// Client is the subset of the Redis commands the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// NewClient connects to the Redis server at url (redis://...).
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parsing cache URL")
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging cache")
	}
	return client, nil
}

// contentRepository serves course lists, courses and topic lists from the cache.
// Enrollments and the ledger always go to the wrapped repository.
// Every key embeds a generation number; bumping it drops all the content at once.
type contentRepository struct {
	course.Repository

	client Client
	ttl    time.Duration
	logger core.Logger
}

func NewContentRepository(repo course.Repository, client Client, ttl time.Duration, logger core.Logger) course.Repository {
	return &contentRepository{Repository: repo, client: client, ttl: ttl, logger: logger}
}

func (repo *contentRepository) generation(ctx context.Context) (string, error) {
	gen, err := repo.client.Get(ctx, generationKey).Result()
	if err == redis.Nil {
		return "0", nil
	}
	return gen, err
}

func (repo *contentRepository) key(ctx context.Context, parts ...string) (string, error) {
	gen, err := repo.generation(ctx)
	if err != nil {
		return "", err
	}
	return keyPrefix + gen + ":" + strings.Join(parts, ":"), nil
}

// cached loads key into dst, or fills it with load and stores it.
// Cache failures are logged and fall back to load.
func (repo *contentRepository) cached(ctx context.Context, dst interface{}, load func() (interface{}, error), parts ...string) error {
	key, err := repo.key(ctx, parts...)
	if err != nil {
		repo.logger.Warn("cache unavailable", err)
		return fill(dst, load)
	}

	data, err := repo.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if err = json.Unmarshal(data, dst); err == nil {
			return nil
		}
		repo.logger.Warn("decoding cached "+key, err)
	case err != redis.Nil:
		repo.logger.Warn("reading cache "+key, err)
	}

	val, err := load()
	if err != nil {
		return err
	}
	if data, err = json.Marshal(val); err != nil {
		return errors.Wrap(err, "encoding "+key)
	}
	if err = repo.client.Set(ctx, key, data, repo.ttl).Err(); err != nil {
		repo.logger.Warn("writing cache "+key, err)
	}
	return json.Unmarshal(data, dst)
}

func fill(dst interface{}, load func() (interface{}, error)) error {
	val, err := load()
	if err != nil {
		return err
	}
	data, err := json.Marshal(val)
	if err != nil {
		return errors.Wrap(err, "encoding value")
	}
	return json.Unmarshal(data, dst)
}

func orderingKey(ordering []core.DBOrdering) string {
	parts := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		parts = append(parts, strings.ReplaceAll(ord.String(), " ", "_"))
	}
	return strings.Join(parts, ",")
}

func (repo *contentRepository) QueryCourses(ctx context.Context, ordering []core.DBOrdering) ([]course.Course, error) {
	var courses []course.Course
	err := repo.cached(ctx, &courses, func() (interface{}, error) {
		return repo.Repository.QueryCourses(ctx, ordering)
	}, "courses", orderingKey(ordering))
	return courses, err
}

func (repo *contentRepository) GetCourse(ctx context.Context, id int) (course.Course, error) {
	var c course.Course
	err := repo.cached(ctx, &c, func() (interface{}, error) {
		return repo.Repository.GetCourse(ctx, id)
	}, "course", strconv.Itoa(id))
	return c, err
}

func (repo *contentRepository) QueryTopics(ctx context.Context, courseID int) ([]course.Topic, error) {
	var topics []course.Topic
	err := repo.cached(ctx, &topics, func() (interface{}, error) {
		return repo.Repository.QueryTopics(ctx, courseID)
	}, "topics", fmt.Sprint(courseID))
	return topics, err
}

func (repo *contentRepository) CreateCourse(ctx context.Context, content course.CourseContent) (course.Course, error) {
	c, err := repo.Repository.CreateCourse(ctx, content)
	if err != nil {
		return course.Course{}, err
	}
	if err = Invalidate(ctx, repo.client); err != nil {
		repo.logger.Warn("invalidating content cache", err)
	}
	return c, nil
}

// Invalidate drops every cached content entry.
func Invalidate(ctx context.Context, client Client) error {
	return errors.Wrap(client.Incr(ctx, generationKey).Err(), "bumping content generation")
}
