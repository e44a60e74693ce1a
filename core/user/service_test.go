package user_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabaq/backend/core"
	"github.com/sabaq/backend/core/user"
	"github.com/sabaq/backend/storage/database/inmem"
)

func setup() (*user.Service, *validator.Validate) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return user.NewService(inmemdb.NewUserRepository(inmemdb.Open())), validate
}

func TestNewUser_Validate(t *testing.T) {
	svc, validate := setup()
	ctx := context.Background()
	_, err := svc.Create(ctx, user.NewUser{Username: "ada", Name: "Ada", Role: user.RoleCurator})
	require.NoError(t, err)

	tests := []struct {
		name    string
		nu      user.NewUser
		wantErr bool
	}{
		{name: "valid", nu: user.NewUser{Username: "  Bob.K ", Name: "Bob", Role: "Student"}},
		{name: "missing name", nu: user.NewUser{Username: "bob", Role: user.RoleStudent}, wantErr: true},
		{name: "short username", nu: user.NewUser{Username: "bo", Name: "Bob", Role: user.RoleStudent}, wantErr: true},
		{name: "bad username", nu: user.NewUser{Username: "bob smith", Name: "Bob", Role: user.RoleStudent}, wantErr: true},
		{name: "bad email", nu: user.NewUser{Username: "bob", Name: "Bob", Email: "lol", Role: user.RoleStudent}, wantErr: true},
		{name: "bad role", nu: user.NewUser{Username: "bob", Name: "Bob", Role: "admin"}, wantErr: true},
		{name: "taken username", nu: user.NewUser{Username: "ADA", Name: "Ada", Role: user.RoleCurator}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nu.Validate(ctx, validate, svc)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	nu := user.NewUser{Username: "  Bob.K ", Name: " Bob ", Role: "Student"}
	require.NoError(t, nu.Validate(ctx, validate, svc))
	assert.Equal(t, user.NewUser{Username: "bob.k", Name: "Bob", Role: user.RoleStudent}, nu)
}

func TestService_Create(t *testing.T) {
	svc, _ := setup()
	ctx := context.Background()

	ada, err := svc.Create(ctx, user.NewUser{Username: "ada", Name: "Ada", Email: "ada@test.cd", Role: user.RoleCurator})
	require.NoError(t, err)
	assert.True(t, ada.IsCurator())
	assert.True(t, ada.IsActive)
	assert.Nil(t, ada.CuratorID)

	bob, err := svc.Create(ctx, user.NewUser{Username: "bob", Name: "Bob", Role: user.RoleStudent, Curator: "ada"})
	require.NoError(t, err)
	if assert.NotNil(t, bob.CuratorID) {
		assert.Equal(t, ada.ID, *bob.CuratorID)
	}

	_, err = svc.Create(ctx, user.NewUser{Username: "eve", Name: "Eve", Role: user.RoleStudent, Curator: "lol"})
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, user.ErrNotFound, verr.Err)
	assert.Equal(t, []core.FieldError{{Field: "curator", Error: "curator not found"}}, verr.Fields)

	got, err := svc.GetByUsername(ctx, " BOB ")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, got.ID)

	got, err = svc.GetByID(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", got.Username)

	_, err = svc.GetByID(ctx, 9999)
	assert.Equal(t, user.ErrNotFound, err)
}

func TestService_StudentsOf(t *testing.T) {
	svc, _ := setup()
	ctx := context.Background()

	ada, err := svc.Create(ctx, user.NewUser{Username: "ada", Name: "Ada", Role: user.RoleCurator})
	require.NoError(t, err)
	grace, err := svc.Create(ctx, user.NewUser{Username: "grace", Name: "Grace", Role: user.RoleCurator})
	require.NoError(t, err)
	bob, err := svc.Create(ctx, user.NewUser{Username: "bob", Name: "Bob", Role: user.RoleStudent, Curator: "ada"})
	require.NoError(t, err)
	eve, err := svc.Create(ctx, user.NewUser{Username: "eve", Name: "Eve", Role: user.RoleStudent, Curator: "ada"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, user.NewUser{Username: "sam", Name: "Sam", Role: user.RoleStudent, Curator: "grace"})
	require.NoError(t, err)

	students, err := svc.StudentsOf(ctx, ada)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, bob.ID, students[0].ID)
	assert.Equal(t, eve.ID, students[1].ID)

	students, err = svc.StudentsOf(ctx, grace)
	require.NoError(t, err)
	assert.Len(t, students, 1)

	students, err = svc.StudentsOf(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, students)
}
