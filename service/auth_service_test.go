package service

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/require"

	"project-service/models"
	"project-service/store/memstore"
)

func newAuthService() *AuthService {
	return NewAuthService(memstore.NewUserStore(), log.New(io.Discard, "", 0))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Name: "Lena", Email: "lena@example.com", Password: "Password1!", Role: models.RoleTeamLead,
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleTeamLead, user.Role)
	require.NotEqual(t, "Password1!", user.Password, "password is stored hashed")

	got, err := svc.Login(ctx, "lena@example.com", "Password1!")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	_, err = svc.Login(ctx, "lena@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "Password1!")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	cases := []RegisterInput{
		{Email: "a@example.com", Password: "Password1!"},         // missing name
		{Name: "A", Email: "not-an-email", Password: "Password1!"},
		{Name: "A", Email: "a@example.com", Password: "short"},
		{Name: "A", Email: "a@example.com", Password: "Password1!", Role: "superuser"},
	}
	for _, in := range cases {
		_, err := svc.Register(ctx, in)
		require.ErrorIs(t, err, ErrValidation)
	}
}

func TestRegisterDefaultsToEmployeeRole(t *testing.T) {
	svc := newAuthService()

	user, err := svc.Register(context.Background(), RegisterInput{
		Name: "A", Email: "a@example.com", Password: "Password1!",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleEmployee, user.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "Password1!"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "B", Email: "a@example.com", Password: "Password1!"})
	require.ErrorIs(t, err, ErrEmailExists)
}
