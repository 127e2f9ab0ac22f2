package server

import (
	"tidepool/internal/models"
	"tidepool/internal/service"

	"github.com/gofiber/fiber/v2"
)

// FollowUser godoc
// @Summary Follow a user (idempotent)
// @Tags follows
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID to follow"
// @Success 200 {object} models.Response{data=service.FollowState}
// @Failure 400 {object} models.Response
// @Failure 404 {object} models.Response
// @Failure 409 {object} models.Response
// @Router /users/{id}/follow [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	targetID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	state, err := s.followService.Follow(c.UserContext(), userID, targetID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, state)
}

// UnfollowUser godoc
// @Summary Unfollow a user (idempotent)
// @Tags follows
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID to unfollow"
// @Success 200 {object} models.Response{data=service.FollowState}
// @Failure 404 {object} models.Response
// @Router /users/{id}/follow [delete]
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	targetID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	state, err := s.followService.Unfollow(c.UserContext(), userID, targetID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, state)
}

// BlockFollower godoc
// @Summary Block a user from following you
// @Tags follows
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID to block"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /users/{id}/block [post]
func (s *Server) BlockFollower(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	followerID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.followService.BlockFollower(c.UserContext(), userID, followerID); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.Response{
		Status:  "success",
		Message: "User blocked",
	})
}

// GetFollowers godoc
// @Summary List a user's followers, newest first
// @Tags follows
// @Produce json
// @Param id path int true "User ID"
// @Param limit query int false "Page size" default(20)
// @Param cursor query string false "Opaque cursor from a previous page"
// @Success 200 {object} models.Response{data=service.FollowPage}
// @Failure 404 {object} models.Response
// @Router /users/{id}/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	page, err := s.followService.ListFollowers(c.UserContext(), service.ListFollowsInput{
		UserID: userID,
		Limit:  queryInt(c, "limit", 0),
		Cursor: c.Query("cursor"),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, page)
}

// GetFollowing godoc
// @Summary List who a user follows, newest first
// @Tags follows
// @Produce json
// @Param id path int true "User ID"
// @Param limit query int false "Page size" default(20)
// @Param cursor query string false "Opaque cursor from a previous page"
// @Success 200 {object} models.Response{data=service.FollowPage}
// @Failure 404 {object} models.Response
// @Router /users/{id}/following [get]
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	page, err := s.followService.ListFollowing(c.UserContext(), service.ListFollowsInput{
		UserID: userID,
		Limit:  queryInt(c, "limit", 0),
		Cursor: c.Query("cursor"),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, page)
}
