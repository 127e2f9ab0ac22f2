package service

import (
	"context"
	"strings"
	"time"

	"tidepool/internal/models"
	"tidepool/internal/repository"
	"tidepool/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService manages accounts and profiles.
type UserService struct {
	userRepo repository.UserRepository
}

type SignupInput struct {
	FullName    string
	Username    string
	Email       string
	Password    string
	Country     string
	DateOfBirth *time.Time
}

type UpdateProfileInput struct {
	UserID         uint
	FullName       *string
	Username       *string
	ProfilePicture *string
	Country        *string
	DateOfBirth    *time.Time
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Signup registers a new account. Username and email must be unused.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if existing, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Email already registered")
	}
	if existing, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		FullName:    strings.TrimSpace(in.FullName),
		Username:    username,
		Email:       email,
		Password:    string(hash),
		Country:     strings.TrimSpace(in.Country),
		DateOfBirth: in.DateOfBirth,
		Active:      true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials. Invalid email, wrong password, and a
// deactivated account all produce the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

// GetProfile returns an active user's profile. Deactivated accounts do
// not resolve.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User", userID)
	}
	if !user.Active {
		return nil, models.NewNotFoundError("User", userID)
	}
	return user, nil
}

// UpdateProfile changes profile fields. Email and password have their
// own flows and are not accepted here.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if _, err := s.GetProfile(ctx, in.UserID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*in.FullName)
	}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		existing, err := s.userRepo.GetByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != in.UserID {
			return nil, models.NewConflictError("Username already taken")
		}
		fields["username"] = username
	}
	if in.ProfilePicture != nil {
		fields["profile_picture"] = *in.ProfilePicture
	}
	if in.Country != nil {
		fields["country"] = strings.TrimSpace(*in.Country)
	}
	if in.DateOfBirth != nil {
		fields["date_of_birth"] = *in.DateOfBirth
	}

	if len(fields) == 0 {
		return nil, models.NewValidationError("No fields to update")
	}
	if err := s.userRepo.UpdateFields(ctx, in.UserID, fields); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, in.UserID)
}

// Deactivate turns the account off. Content stays; the profile and
// login stop working.
func (s *UserService) Deactivate(ctx context.Context, userID uint) error {
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.Deactivate(ctx, userID)
}
