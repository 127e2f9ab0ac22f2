// Package service implements the application's business logic on top of
// the repository layer.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"tidepool/internal/middleware"
	"tidepool/internal/models"
	"tidepool/internal/observability"
	"tidepool/internal/pagination"
	"tidepool/internal/repository"

	"gorm.io/gorm"
)

const (
	maxCommentLen       = 1000
	defaultCommentLimit = 20
	maxCommentLimit     = 100
)

// CommentService implements the threaded comment engine: one level of
// replies, denormalized counters, soft deletion for commented parents.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

type CreateCommentInput struct {
	UserID   uint
	PostID   uint
	ParentID *uint
	Content  string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

type ListCommentsInput struct {
	PostID   uint
	ViewerID uint
	Limit    int
	Cursor   string
}

type ListRepliesInput struct {
	ParentID uint
	Limit    int
	Cursor   string
}

// CommentPage is one page of a cursor-paginated comment listing.
type CommentPage struct {
	Comments   []*models.Comment `json:"comments"`
	NextCursor string            `json:"next_cursor,omitempty"`
	HasMore    bool              `json:"has_more"`
}

// LikeResult reports the state after a like mutation.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// notFoundOr translates a missing row into the API-level not-found
// error; anything else passes through untouched.
func notFoundOr(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return err
}

// applyCounterDelta runs one denormalized-counter update after the
// owning edge mutation already committed. A failure here leaves drift
// that the reconcile pass repairs, so it is recorded loudly.
func applyCounterDelta(ctx context.Context, counter string, fn func() error) error {
	if err := fn(); err != nil {
		observability.CounterUpdateFailures.WithLabelValues(counter).Inc()
		middleware.Logger.ErrorContext(ctx, "counter update failed",
			slog.String("counter", counter),
			slog.String("error", err.Error()),
		)
		return models.NewInternalError(err)
	}
	return nil
}

func validateCommentContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", models.NewValidationError("Content is required")
	}
	// Limits are in characters, not bytes, so multi-byte runes count once.
	if utf8.RuneCountInString(content) > maxCommentLen {
		return "", models.NewValidationError("Comment too long (max 1000 characters)")
	}
	return content, nil
}

// CreateComment creates a top-level comment or a reply. Replies are
// limited to one level: replying to a reply is rejected rather than
// silently reparented.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	content, err := validateCommentContent(in.Content)
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, notFoundOr(err, "Post", in.PostID)
	}
	// Hidden posts resolve only for their owner, same as GetPost.
	if !post.Visible && post.UserID != in.UserID {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}

	comment := &models.Comment{
		PostID:  in.PostID,
		UserID:  in.UserID,
		Content: content,
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, notFoundOr(err, "Comment", *in.ParentID)
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
		if parent.IsDeleted() {
			return nil, models.NewNotFoundError("Comment", *in.ParentID)
		}
		if parent.Depth >= models.MaxCommentDepth {
			return nil, models.NewValidationError("Replies can only be one level deep")
		}

		comment.ParentID = &parent.ID
		comment.Depth = parent.Depth + 1
		if parent.RootID != nil {
			comment.RootID = parent.RootID
		} else {
			comment.RootID = &parent.ID
		}
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	now := comment.CreatedAt
	if err := applyCounterDelta(ctx, "post_comments", func() error {
		return s.postRepo.AddCommentStats(ctx, in.PostID, 1, &now)
	}); err != nil {
		return nil, err
	}
	if comment.ParentID != nil {
		if err := applyCounterDelta(ctx, "comment_replies", func() error {
			return s.commentRepo.AddRepliesCount(ctx, *comment.ParentID, 1)
		}); err != nil {
			return nil, err
		}
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns one page of top-level comments, newest first.
// A hidden post's comments resolve only for the post's owner.
func (s *CommentService) ListComments(ctx context.Context, in ListCommentsInput) (*CommentPage, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, notFoundOr(err, "Post", in.PostID)
	}
	if !post.Visible && post.UserID != in.ViewerID {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}

	cur, err := pagination.Decode(in.Cursor)
	if err != nil {
		return nil, err
	}
	limit := pagination.ClampLimit(in.Limit, defaultCommentLimit, maxCommentLimit)

	// Fetch one extra row to learn whether another page exists.
	comments, err := s.commentRepo.ListTopLevel(ctx, in.PostID, limit+1, cur)
	if err != nil {
		return nil, err
	}
	return buildPage(comments, limit), nil
}

// ListReplies returns one page of direct replies, newest first. A
// soft-deleted parent is treated as absent.
func (s *CommentService) ListReplies(ctx context.Context, in ListRepliesInput) (*CommentPage, error) {
	parent, err := s.commentRepo.GetByID(ctx, in.ParentID)
	if err != nil {
		return nil, notFoundOr(err, "Comment", in.ParentID)
	}
	if parent.IsDeleted() {
		return nil, models.NewNotFoundError("Comment", in.ParentID)
	}

	cur, err := pagination.Decode(in.Cursor)
	if err != nil {
		return nil, err
	}
	limit := pagination.ClampLimit(in.Limit, defaultCommentLimit, maxCommentLimit)

	replies, err := s.commentRepo.ListReplies(ctx, in.ParentID, limit+1, cur)
	if err != nil {
		return nil, err
	}
	return buildPage(replies, limit), nil
}

func buildPage(comments []*models.Comment, limit int) *CommentPage {
	page := &CommentPage{Comments: comments}
	if len(comments) > limit {
		page.Comments = comments[:limit]
		page.HasMore = true
	}
	if page.HasMore && len(page.Comments) > 0 {
		page.NextCursor = pagination.FromComment(page.Comments[len(page.Comments)-1]).Encode()
	}
	if page.Comments == nil {
		page.Comments = []*models.Comment{}
	}
	return page
}

// UpdateComment edits the comment body. Ownership failures report
// not-found so the endpoint does not confirm other users' comment IDs.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	content, err := validateCommentContent(in.Content)
	if err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, notFoundOr(err, "Comment", in.CommentID)
	}
	if comment.UserID != in.UserID || comment.IsDeleted() {
		return nil, models.NewNotFoundError("Comment", in.CommentID)
	}

	if err := s.commentRepo.UpdateContent(ctx, in.CommentID, content); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, in.CommentID)
}

// DeleteComment removes a comment. A comment with live replies is
// soft-deleted so the thread keeps its shape; otherwise the row is
// removed outright. Hard-deleting the last live reply of a soft-deleted
// parent reaps the parent row too.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return notFoundOr(err, "Comment", in.CommentID)
	}
	if comment.UserID != in.UserID || comment.IsDeleted() {
		return models.NewNotFoundError("Comment", in.CommentID)
	}

	liveChildren, err := s.commentRepo.CountLiveChildren(ctx, in.CommentID)
	if err != nil {
		return err
	}

	// Soft delete keeps the row and every counter: the tombstone still
	// occupies its slot in the thread.
	if liveChildren > 0 {
		return s.commentRepo.SoftDelete(ctx, in.CommentID, time.Now().UTC())
	}

	if err := s.commentRepo.HardDelete(ctx, in.CommentID); err != nil {
		return err
	}
	if err := applyCounterDelta(ctx, "post_comments", func() error {
		return s.postRepo.AddCommentStats(ctx, comment.PostID, -1, nil)
	}); err != nil {
		return err
	}
	if comment.ParentID != nil {
		if err := applyCounterDelta(ctx, "comment_replies", func() error {
			return s.commentRepo.AddRepliesCount(ctx, *comment.ParentID, -1)
		}); err != nil {
			return err
		}
		if err := s.reapParentIfOrphaned(ctx, *comment.ParentID); err != nil {
			return err
		}
	}
	return nil
}

// reapParentIfOrphaned hard-deletes a soft-deleted parent once its last
// live reply is gone. The tombstone still counted toward the post, so
// its removal carries one more decrement.
func (s *CommentService) reapParentIfOrphaned(ctx context.Context, parentID uint) error {
	parent, err := s.commentRepo.GetByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if !parent.IsDeleted() {
		return nil
	}

	live, err := s.commentRepo.CountLiveChildren(ctx, parentID)
	if err != nil {
		return err
	}
	if live > 0 {
		return nil
	}

	if err := s.commentRepo.HardDelete(ctx, parentID); err != nil {
		return err
	}
	return applyCounterDelta(ctx, "post_comments", func() error {
		return s.postRepo.AddCommentStats(ctx, parent.PostID, -1, nil)
	})
}

// ToggleCommentLike likes the comment when unliked and unlikes it
// otherwise.
func (s *CommentService) ToggleCommentLike(ctx context.Context, userID, commentID uint) (*LikeResult, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, notFoundOr(err, "Comment", commentID)
	}
	if comment.IsDeleted() {
		return nil, models.NewNotFoundError("Comment", commentID)
	}

	created, err := s.commentRepo.Like(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}

	liked := true
	if created {
		if err := applyCounterDelta(ctx, "comment_likes", func() error {
			return s.commentRepo.AddLikesCount(ctx, commentID, 1)
		}); err != nil {
			return nil, err
		}
	} else {
		removed, err := s.commentRepo.Unlike(ctx, userID, commentID)
		if err != nil {
			return nil, err
		}
		liked = false
		if removed {
			if err := applyCounterDelta(ctx, "comment_likes", func() error {
				return s.commentRepo.AddLikesCount(ctx, commentID, -1)
			}); err != nil {
				return nil, err
			}
		}
	}

	fresh, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: liked, LikesCount: fresh.LikesCount}, nil
}

// LikeComment adds a like. Already-liked is a no-op success.
func (s *CommentService) LikeComment(ctx context.Context, userID, commentID uint) (*LikeResult, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, notFoundOr(err, "Comment", commentID)
	}
	if comment.IsDeleted() {
		return nil, models.NewNotFoundError("Comment", commentID)
	}

	created, err := s.commentRepo.Like(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}
	if created {
		if err := applyCounterDelta(ctx, "comment_likes", func() error {
			return s.commentRepo.AddLikesCount(ctx, commentID, 1)
		}); err != nil {
			return nil, err
		}
	}

	fresh, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: true, LikesCount: fresh.LikesCount}, nil
}

// UnlikeComment removes a like. Not-liked is a no-op success.
func (s *CommentService) UnlikeComment(ctx context.Context, userID, commentID uint) (*LikeResult, error) {
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return nil, notFoundOr(err, "Comment", commentID)
	}

	removed, err := s.commentRepo.Unlike(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}
	if removed {
		if err := applyCounterDelta(ctx, "comment_likes", func() error {
			return s.commentRepo.AddLikesCount(ctx, commentID, -1)
		}); err != nil {
			return nil, err
		}
	}

	fresh, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: false, LikesCount: fresh.LikesCount}, nil
}
