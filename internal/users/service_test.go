package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryUserRepo struct {
	users  map[int64]User
	nextID int64
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[int64]User)}
}

func (r *memoryUserRepo) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	for id := int64(1); id <= r.nextID; id++ {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memoryUserRepo) GetUser(ctx context.Context, id int64) (User, bool, error) {
	u, ok := r.users[id]
	return u, ok, nil
}

func (r *memoryUserRepo) GetByEmployeeNumber(ctx context.Context, employeeNumber int) (User, bool, error) {
	for _, u := range r.users {
		if u.EmployeeNumber == employeeNumber {
			return u, true, nil
		}
	}
	return User{}, false, nil
}

func (r *memoryUserRepo) CreateUser(ctx context.Context, u User) (int64, error) {
	r.nextID++
	u.ID = r.nextID
	r.users[u.ID] = u
	return u.ID, nil
}

func (r *memoryUserRepo) UpdateUser(ctx context.Context, u User) error {
	if _, ok := r.users[u.ID]; !ok {
		return ErrNotFound
	}
	r.users[u.ID] = u
	return nil
}

func TestCreateUser(t *testing.T) {
	svc := NewService(newMemoryUserRepo())
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, CreateUserInput{
		FirstName: "Ana", LastName: "Ribeiro", EmployeeNumber: 1001, Password: "s3cret", Role: "Manager",
	})
	require.NoError(t, err)
	require.True(t, u.Active)
	require.NotEqual(t, "s3cret", u.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")))

	// duplicate employee number is rejected
	_, err = svc.CreateUser(ctx, CreateUserInput{
		FirstName: "Bruno", LastName: "Costa", EmployeeNumber: 1001, Password: "other", Role: "Operator",
	})
	require.ErrorIs(t, err, ErrDuplicateNumber)

	_, err = svc.CreateUser(ctx, CreateUserInput{FirstName: " ", LastName: "x", EmployeeNumber: 2, Password: "p", Role: "r"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateUser(t *testing.T) {
	svc := NewService(newMemoryUserRepo())
	ctx := context.Background()
	u, err := svc.CreateUser(ctx, CreateUserInput{FirstName: "Ana", LastName: "Ribeiro", EmployeeNumber: 1001, Password: "s3cret", Role: "Manager"})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateUser(ctx, u.ID, UpdateUserInput{FirstName: "Ana", LastName: "Ribeiro", Role: "Operator", Active: false}))
	got, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Operator", got.Role)
	require.False(t, got.Active)

	err = svc.UpdateUser(ctx, 999, UpdateUserInput{FirstName: "x", LastName: "y", Role: "z"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResetPassword(t *testing.T) {
	svc := NewService(newMemoryUserRepo())
	ctx := context.Background()
	_, err := svc.CreateUser(ctx, CreateUserInput{FirstName: "Ana", LastName: "Ribeiro", EmployeeNumber: 1001, Password: "old", Role: "Manager"})
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, 1001, "brand-new"))
	cred, ok, err := svc.ByEmployeeNumber(ctx, 1001)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte("brand-new")))
	require.Error(t, bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte("old")))

	err = svc.ResetPassword(ctx, 9999, "whatever")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDisplayName(t *testing.T) {
	svc := NewService(newMemoryUserRepo())
	ctx := context.Background()
	u, err := svc.CreateUser(ctx, CreateUserInput{FirstName: "Ana", LastName: "Ribeiro", EmployeeNumber: 1001, Password: "x12345", Role: "Manager"})
	require.NoError(t, err)

	name, err := svc.DisplayName(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Ana Ribeiro", name)

	_, err = svc.DisplayName(ctx, 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestByEmployeeNumberMissing(t *testing.T) {
	svc := NewService(newMemoryUserRepo())
	_, ok, err := svc.ByEmployeeNumber(context.Background(), 1234)
	require.NoError(t, err)
	require.False(t, ok)
}
