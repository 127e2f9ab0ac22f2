package server

import (
	"time"

	"tidepool/internal/models"
	"tidepool/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpdateProfileRequest carries the mutable profile fields. Email and
// password are deliberately absent; those change through auth flows.
type UpdateProfileRequest struct {
	FullName       *string    `json:"full_name"`
	Username       *string    `json:"username"`
	ProfilePicture *string    `json:"profile_picture"`
	Country        *string    `json:"country"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
}

// GetMyProfile godoc
// @Summary Get the authenticated user's profile
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=models.User}
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetProfile(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, user)
}

// UpdateMyProfile godoc
// @Summary Update profile fields
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Fields to update"
// @Success 200 {object} models.Response{data=models.User}
// @Failure 400 {object} models.Response
// @Failure 409 {object} models.Response
// @Router /users/me [patch]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:         userID,
		FullName:       req.FullName,
		Username:       req.Username,
		ProfilePicture: req.ProfilePicture,
		Country:        req.Country,
		DateOfBirth:    req.DateOfBirth,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, user)
}

// DeactivateMe godoc
// @Summary Deactivate the authenticated account
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /users/me [delete]
func (s *Server) DeactivateMe(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := s.userService.Deactivate(c.UserContext(), userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.Response{
		Status:  "success",
		Message: "Account deactivated",
	})
}

// GetMyFlags godoc
// @Summary Get evaluated feature flags for the authenticated user
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /users/me/flags [get]
func (s *Server) GetMyFlags(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	return models.RespondWithData(c, fiber.StatusOK, s.featureFlags.Snapshot(userID))
}

// GetUserProfile godoc
// @Summary Get a user's public profile
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.Response{data=models.User}
// @Failure 404 {object} models.Response
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetProfile(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, user)
}
