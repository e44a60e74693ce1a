package sqlxrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/sabaq/backend/core/user"
)

var userColumns = []string{"id", "username", "name", "email", "role", "curator_id", "is_active", "created_at"}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q, args, err := psql.Insert("users").
		Columns("username", "name", "email", "role", "curator_id", "is_active", "created_at").
		Values(usr.Username, usr.Name, usr.Email, usr.Role, usr.CuratorID, usr.IsActive, usr.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}
	if err = repo.db.QueryRowxContext(ctx, q, args...).Scan(&usr.ID); err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUserExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	where := sq.Eq{}
	if filter.ID != 0 {
		where["id"] = filter.ID
	}
	if filter.Username != "" {
		where["username"] = filter.Username
	}
	if len(where) == 0 {
		return user.User{}, user.ErrNotFound
	}

	q, args, err := psql.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}
	var usr user.User
	if err = repo.db.GetContext(ctx, &usr, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return usr, nil
}

func (repo *userRepository) QueryStudents(ctx context.Context, curatorID int) ([]user.User, error) {
	q, args, err := psql.Select(userColumns...).From("users").
		Where(sq.Eq{"curator_id": curatorID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	students := make([]user.User, 0)
	if err = repo.db.SelectContext(ctx, &students, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	return students, nil
}
