package inmemdb

import (
	"context"
	"sort"

	"github.com/sabaq/backend/core/user"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, u := range repo.db.user {
		if u.Username == usr.Username {
			return user.User{}, user.ErrUserExists
		}
	}
	usr.ID = repo.db.nextPK()
	repo.db.user[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if filter.ID != 0 {
		if usr, ok := repo.db.user[filter.ID]; ok {
			return *usr, nil
		}
		return user.User{}, user.ErrNotFound
	}
	for _, usr := range repo.db.user {
		if filter.Username != "" && usr.Username == filter.Username {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryStudents(_ context.Context, curatorID int) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	students := make([]user.User, 0)
	for _, usr := range repo.db.user {
		if usr.CuratorID != nil && *usr.CuratorID == curatorID {
			students = append(students, *usr)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}
