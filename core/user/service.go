package user

import (
	"context"
	"errors"
	"time"

	"github.com/sabaq/backend/core"
)

var (
	// errors
	ErrNotFound   = errors.New("user not found")
	ErrUserExists = errors.New("a user with this username already exists")
)

type (
	GetFilter struct {
		ID       int
		Username string
	}

	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		// QueryStudents returns the users whose curator is curatorID, ordered by ID.
		QueryStudents(ctx context.Context, curatorID int) ([]User, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(ctx context.Context, uname string) error {
	_, err := svc.repo.GetUser(ctx, GetFilter{Username: uname})
	switch err {
	case nil:
		return core.NewValidationError(ErrUserExists, core.FieldError{Field: "username", Error: ErrUserExists.Error()})
	case ErrNotFound:
		return nil
	default:
		return err
	}
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	usr := User{
		Username:  nu.Username,
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if nu.Curator != "" {
		curator, err := svc.GetByUsername(ctx, nu.Curator)
		if err != nil {
			if err == ErrNotFound {
				return User{}, core.NewValidationError(err, core.FieldError{Field: "curator", Error: "curator not found"})
			}
			return User{}, err
		}
		usr.CuratorID = &curator.ID
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Username: core.CleanString(uname, true /* lower */)})
}

// StudentsOf returns the students assigned to the curator.
func (svc *Service) StudentsOf(ctx context.Context, curator User) ([]User, error) {
	return svc.repo.QueryStudents(ctx, curator.ID)
}
