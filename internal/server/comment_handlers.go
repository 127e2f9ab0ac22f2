package server

import (
	"tidepool/internal/models"
	"tidepool/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateCommentRequest is the payload for commenting on a post. A
// non-nil ParentID makes this a reply to a top-level comment.
type CreateCommentRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id"`
}

// UpdateCommentRequest is the payload for editing a comment.
type UpdateCommentRequest struct {
	Content string `json:"content"`
}

// CreateComment godoc
// @Summary Comment on a post, optionally as a reply
// @Tags comments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body CreateCommentRequest true "Comment content"
// @Success 201 {object} models.Response{data=models.Comment}
// @Failure 400 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:   userID,
		PostID:   postID,
		ParentID: req.ParentID,
		Content:  req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusCreated, comment)
}

// GetComments godoc
// @Summary List a post's top-level comments, newest first
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Param limit query int false "Page size" default(20)
// @Param cursor query string false "Opaque cursor from a previous page"
// @Success 200 {object} models.Response{data=service.CommentPage}
// @Failure 404 {object} models.Response
// @Router /posts/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	viewerID, _ := s.optionalUserID(c)

	page, err := s.commentService.ListComments(c.UserContext(), service.ListCommentsInput{
		PostID:   postID,
		ViewerID: viewerID,
		Limit:    queryInt(c, "limit", 0),
		Cursor:   c.Query("cursor"),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, page)
}

// GetReplies godoc
// @Summary List replies to a comment, newest first
// @Tags comments
// @Produce json
// @Param commentId path int true "Comment ID"
// @Param limit query int false "Page size" default(20)
// @Param cursor query string false "Opaque cursor from a previous page"
// @Success 200 {object} models.Response{data=service.CommentPage}
// @Failure 404 {object} models.Response
// @Router /comments/{commentId}/replies [get]
func (s *Server) GetReplies(c *fiber.Ctx) error {
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}

	page, err := s.commentService.ListReplies(c.UserContext(), service.ListRepliesInput{
		ParentID: commentID,
		Limit:    queryInt(c, "limit", 0),
		Cursor:   c.Query("cursor"),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, page)
}

// UpdateComment godoc
// @Summary Edit a comment
// @Tags comments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param commentId path int true "Comment ID"
// @Param request body UpdateCommentRequest true "New content"
// @Success 200 {object} models.Response{data=models.Comment}
// @Failure 400 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /comments/{commentId} [patch]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}

	var req UpdateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    userID,
		CommentID: commentID,
		Content:   req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, comment)
}

// DeleteComment godoc
// @Summary Delete a comment
// @Tags comments
// @Security BearerAuth
// @Produce json
// @Param commentId path int true "Comment ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /comments/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		UserID:    userID,
		CommentID: commentID,
	}); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.Response{
		Status:  "success",
		Message: "Comment deleted",
	})
}

// LikeComment godoc
// @Summary Like a comment (idempotent)
// @Tags comments
// @Security BearerAuth
// @Produce json
// @Param commentId path int true "Comment ID"
// @Success 200 {object} models.Response{data=service.LikeResult}
// @Failure 404 {object} models.Response
// @Router /comments/{commentId}/likes [post]
func (s *Server) LikeComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}

	result, err := s.commentService.LikeComment(c.UserContext(), userID, commentID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, result)
}

// UnlikeComment godoc
// @Summary Remove a like from a comment (idempotent)
// @Tags comments
// @Security BearerAuth
// @Produce json
// @Param commentId path int true "Comment ID"
// @Success 200 {object} models.Response{data=service.LikeResult}
// @Failure 404 {object} models.Response
// @Router /comments/{commentId}/likes [delete]
func (s *Server) UnlikeComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}

	result, err := s.commentService.UnlikeComment(c.UserContext(), userID, commentID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, result)
}
