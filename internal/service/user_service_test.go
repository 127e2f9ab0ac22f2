package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.Signup(ctx, SignupInput{
		FullName: "Ada Lovelace",
		Username: "ada",
		Email:    "Ada@Example.com",
		Password: "CorrectHorse1!",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email, "email is normalized")
	assert.NotEqual(t, "CorrectHorse1!", user.Password, "password is hashed")
	assert.True(t, user.Active)

	logged, err := env.users.Login(ctx, "ada@example.com", "CorrectHorse1!")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	_, err = env.users.Login(ctx, "ada@example.com", "WrongPassword1!")
	assertAppCode(t, err, "UNAUTHORIZED")

	_, err = env.users.Login(ctx, "nobody@example.com", "CorrectHorse1!")
	assertAppCode(t, err, "UNAUTHORIZED")
}

func TestSignup_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   SignupInput
	}{
		{"Bad Username", SignupInput{Username: "x", Email: "a@b.co", Password: "CorrectHorse1!"}},
		{"Bad Email", SignupInput{Username: "gooduser", Email: "nope", Password: "CorrectHorse1!"}},
		{"Weak Password", SignupInput{Username: "gooduser", Email: "a@b.co", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.users.Signup(ctx, tc.in)
			assertAppCode(t, err, "VALIDATION_ERROR")
		})
	}
}

func TestSignup_Conflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Signup(ctx, SignupInput{
		Username: "taken", Email: "taken@example.com", Password: "CorrectHorse1!",
	})
	require.NoError(t, err)

	_, err = env.users.Signup(ctx, SignupInput{
		Username: "other", Email: "taken@example.com", Password: "CorrectHorse1!",
	})
	assertAppCode(t, err, "CONFLICT")

	_, err = env.users.Signup(ctx, SignupInput{
		Username: "taken", Email: "fresh@example.com", Password: "CorrectHorse1!",
	})
	assertAppCode(t, err, "CONFLICT")
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.Signup(ctx, SignupInput{
		Username: "renamer", Email: "renamer@example.com", Password: "CorrectHorse1!",
	})
	require.NoError(t, err)
	blocker, err := env.users.Signup(ctx, SignupInput{
		Username: "occupied", Email: "occupied@example.com", Password: "CorrectHorse1!",
	})
	require.NoError(t, err)
	_ = blocker

	name := "newname"
	updated, err := env.users.UpdateProfile(ctx, UpdateProfileInput{
		UserID: user.ID, Username: &name,
	})
	require.NoError(t, err)
	assert.Equal(t, "newname", updated.Username)

	conflict := "occupied"
	_, err = env.users.UpdateProfile(ctx, UpdateProfileInput{
		UserID: user.ID, Username: &conflict,
	})
	assertAppCode(t, err, "CONFLICT")

	_, err = env.users.UpdateProfile(ctx, UpdateProfileInput{UserID: user.ID})
	assertAppCode(t, err, "VALIDATION_ERROR")
}

func TestDeactivate_HidesProfileAndBlocksLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.Signup(ctx, SignupInput{
		Username: "ghost", Email: "ghost@example.com", Password: "CorrectHorse1!",
	})
	require.NoError(t, err)

	require.NoError(t, env.users.Deactivate(ctx, user.ID))

	_, err = env.users.GetProfile(ctx, user.ID)
	assertAppCode(t, err, "NOT_FOUND")

	_, err = env.users.Login(ctx, "ghost@example.com", "CorrectHorse1!")
	assertAppCode(t, err, "UNAUTHORIZED")
}
