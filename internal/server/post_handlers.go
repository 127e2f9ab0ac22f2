package server

import (
	"tidepool/internal/models"
	"tidepool/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePostRequest is the payload for publishing a post.
type CreatePostRequest struct {
	Content   string               `json:"content"`
	Media     []service.MediaInput `json:"media"`
	Tags      []string             `json:"tags"`
	Latitude  *float64             `json:"latitude"`
	Longitude *float64             `json:"longitude"`
}

// UpdatePostRequest is the payload for editing a post. Nil fields are
// left untouched; Tags replaces the whole set when present.
type UpdatePostRequest struct {
	Content *string  `json:"content"`
	Tags    []string `json:"tags"`
	Visible *bool    `json:"visible"`
}

// CreatePost godoc
// @Summary Publish a post
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreatePostRequest true "Post content"
// @Success 201 {object} models.Response{data=models.Post}
// @Failure 400 {object} models.Response
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:    userID,
		Content:   req.Content,
		Media:     req.Media,
		Tags:      req.Tags,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusCreated, post)
}

// GetPosts godoc
// @Summary List visible posts
// @Tags posts
// @Produce json
// @Param author query int false "Filter by author ID"
// @Param tag query string false "Filter by tag"
// @Param sort query string false "Sort order: new or top" default(new)
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} models.Response{data=service.PostPage}
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, err := s.postService.ListPosts(c.UserContext(), service.ListPostsInput{
		AuthorID: uint(queryInt(c, "author", 0)),
		Tag:      c.Query("tag"),
		Sort:     c.Query("sort", "new"),
		Limit:    queryInt(c, "limit", 0),
		Offset:   queryInt(c, "offset", 0),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, page)
}

// GetPost godoc
// @Summary Get a single post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Response{data=service.PostView}
// @Failure 404 {object} models.Response
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	// An Authorization header is optional here; with one, the response
	// includes the viewer's like state and can see their hidden posts.
	viewerID, _ := s.optionalUserID(c)

	view, err := s.postService.GetPost(c.UserContext(), postID, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, view)
}

// UpdatePost godoc
// @Summary Edit a post
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body UpdatePostRequest true "Fields to update"
// @Success 200 {object} models.Response{data=models.Post}
// @Failure 403 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /posts/{id} [patch]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:  userID,
		PostID:  postID,
		Content: req.Content,
		Tags:    req.Tags,
		Visible: req.Visible,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, post)
}

// DeletePost godoc
// @Summary Delete a post and all its dependents
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Response
// @Failure 403 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), userID, postID); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.Response{
		Status:  "success",
		Message: "Post deleted",
	})
}

// TogglePostLike godoc
// @Summary Toggle the viewer's like on a post
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Response{data=service.LikeResult}
// @Failure 404 {object} models.Response
// @Router /posts/{id}/like [post]
func (s *Server) TogglePostLike(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.postService.TogglePostLike(c.UserContext(), userID, postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, result)
}

// LikePost godoc
// @Summary Like a post (idempotent)
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Response{data=service.LikeResult}
// @Failure 404 {object} models.Response
// @Router /posts/{id}/likes [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.postService.LikePost(c.UserContext(), userID, postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, result)
}

// UnlikePost godoc
// @Summary Remove a like from a post (idempotent)
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Response{data=service.LikeResult}
// @Failure 404 {object} models.Response
// @Router /posts/{id}/likes [delete]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.postService.UnlikePost(c.UserContext(), userID, postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, result)
}
