package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"tidepool/internal/models"
	"tidepool/internal/repository"
)

const (
	maxPostLen       = 2000
	maxPostMedia     = 10
	maxPostTags      = 10
	defaultPostLimit = 20
	maxPostLimit     = 100
)

// PostService manages posts, their media attachments, and post likes.
type PostService struct {
	postRepo repository.PostRepository
}

type MediaInput struct {
	Type            string   `json:"type"`
	URL             string   `json:"url"`
	Filename        string   `json:"filename"`
	Size            int64    `json:"size"`
	DurationSeconds *float64 `json:"duration_seconds"`
	ThumbnailURL    string   `json:"thumbnail_url"`
}

type CreatePostInput struct {
	UserID    uint
	Content   string
	Media     []MediaInput
	Tags      []string
	Latitude  *float64
	Longitude *float64
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Content *string
	Tags    []string
	Visible *bool
}

type ListPostsInput struct {
	AuthorID uint
	Tag      string
	Sort     string
	Limit    int
	Offset   int
}

// PostView is a post plus viewer-specific state.
type PostView struct {
	*models.Post
	Liked bool `json:"liked"`
}

// PostPage is one page of an offset-paginated post listing.
type PostPage struct {
	Posts  []*models.Post `json:"posts"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

func validateMedia(media []MediaInput) ([]models.PostMedia, error) {
	if len(media) > maxPostMedia {
		return nil, models.NewValidationError("Too many media attachments (max 10)")
	}

	out := make([]models.PostMedia, 0, len(media))
	for i, m := range media {
		mt := models.MediaType(strings.ToLower(strings.TrimSpace(m.Type)))
		if mt != models.MediaTypeImage && mt != models.MediaTypeVideo {
			return nil, models.NewValidationError("Media type must be image or video")
		}
		if strings.TrimSpace(m.URL) == "" {
			return nil, models.NewValidationError("Media URL is required")
		}
		out = append(out, models.PostMedia{
			Position:        i,
			Type:            mt,
			URL:             m.URL,
			Filename:        m.Filename,
			Size:            m.Size,
			DurationSeconds: m.DurationSeconds,
			ThumbnailURL:    m.ThumbnailURL,
		})
	}
	return out, nil
}

func normalizeTags(tags []string) ([]string, error) {
	if len(tags) > maxPostTags {
		return nil, models.NewValidationError("Too many tags (max 10)")
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool)
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out, nil
}

// CreatePost creates a post with optional media attachments. A post
// needs either text or at least one attachment.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	// Character limit, not bytes: multi-byte runes count once.
	if utf8.RuneCountInString(content) > maxPostLen {
		return nil, models.NewValidationError("Post too long (max 2000 characters)")
	}
	if content == "" && len(in.Media) == 0 {
		return nil, models.NewValidationError("Post needs text or media")
	}

	media, err := validateMedia(in.Media)
	if err != nil {
		return nil, err
	}
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:    in.UserID,
		Content:   content,
		Media:     media,
		Tags:      tags,
		Visible:   true,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

// GetPost fetches one post. Anonymous reads go through the cache;
// authenticated reads hit the DB so the liked flag is current. Hidden
// posts resolve only for their owner.
func (s *PostService) GetPost(ctx context.Context, postID, viewerID uint) (*PostView, error) {
	var post *models.Post
	var err error
	if viewerID == 0 {
		post, err = s.postRepo.GetByIDCached(ctx, postID)
	} else {
		post, err = s.postRepo.GetByID(ctx, postID)
	}
	if err != nil {
		return nil, notFoundOr(err, "Post", postID)
	}
	if !post.Visible && post.UserID != viewerID {
		return nil, models.NewNotFoundError("Post", postID)
	}

	view := &PostView{Post: post}
	if viewerID != 0 {
		liked, err := s.postRepo.IsLiked(ctx, viewerID, postID)
		if err != nil {
			return nil, err
		}
		view.Liked = liked
	}
	return view, nil
}

// ListPosts returns a page of visible posts, newest first by default or
// most liked with sort=top.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (*PostPage, error) {
	sort := in.Sort
	switch sort {
	case "", "new":
		sort = "new"
	case "top":
	default:
		return nil, models.NewValidationError("Sort must be new or top")
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultPostLimit
	}
	if limit > maxPostLimit {
		limit = maxPostLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	posts, total, err := s.postRepo.List(ctx, repository.PostListQuery{
		AuthorID: in.AuthorID,
		Tag:      strings.ToLower(strings.TrimSpace(in.Tag)),
		Sort:     sort,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return &PostPage{Posts: posts, Total: total, Limit: limit, Offset: offset}, nil
}

// UpdatePost edits content, tags, or visibility. Only the author may
// edit; media attachments are immutable after creation.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, notFoundOr(err, "Post", in.PostID)
	}
	if post.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only update your own posts")
	}

	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if utf8.RuneCountInString(content) > maxPostLen {
			return nil, models.NewValidationError("Post too long (max 2000 characters)")
		}
		if content == "" && len(post.Media) == 0 {
			return nil, models.NewValidationError("Post needs text or media")
		}
		post.Content = content
	}
	if in.Tags != nil {
		tags, err := normalizeTags(in.Tags)
		if err != nil {
			return nil, err
		}
		post.Tags = tags
	}
	if in.Visible != nil {
		post.Visible = *in.Visible
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, in.PostID)
}

// DeletePost removes the post and everything attached to it.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return notFoundOr(err, "Post", postID)
	}
	if post.UserID != userID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, postID)
}

// TogglePostLike likes the post when unliked and unlikes it otherwise.
func (s *PostService) TogglePostLike(ctx context.Context, userID, postID uint) (*LikeResult, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, notFoundOr(err, "Post", postID)
	}
	if !post.Visible && post.UserID != userID {
		return nil, models.NewNotFoundError("Post", postID)
	}

	created, err := s.postRepo.Like(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	liked := true
	if created {
		if err := applyCounterDelta(ctx, "post_likes", func() error {
			return s.postRepo.AddLikesCount(ctx, postID, 1)
		}); err != nil {
			return nil, err
		}
	} else {
		removed, err := s.postRepo.Unlike(ctx, userID, postID)
		if err != nil {
			return nil, err
		}
		liked = false
		if removed {
			if err := applyCounterDelta(ctx, "post_likes", func() error {
				return s.postRepo.AddLikesCount(ctx, postID, -1)
			}); err != nil {
				return nil, err
			}
		}
	}

	fresh, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: liked, LikesCount: fresh.LikesCount}, nil
}

// LikePost adds a like. Already-liked is a no-op success.
func (s *PostService) LikePost(ctx context.Context, userID, postID uint) (*LikeResult, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, notFoundOr(err, "Post", postID)
	}
	if !post.Visible && post.UserID != userID {
		return nil, models.NewNotFoundError("Post", postID)
	}

	created, err := s.postRepo.Like(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if created {
		if err := applyCounterDelta(ctx, "post_likes", func() error {
			return s.postRepo.AddLikesCount(ctx, postID, 1)
		}); err != nil {
			return nil, err
		}
	}

	fresh, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: true, LikesCount: fresh.LikesCount}, nil
}

// UnlikePost removes a like. Not-liked is a no-op success.
func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint) (*LikeResult, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, notFoundOr(err, "Post", postID)
	}

	removed, err := s.postRepo.Unlike(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if removed {
		if err := applyCounterDelta(ctx, "post_likes", func() error {
			return s.postRepo.AddLikesCount(ctx, postID, -1)
		}); err != nil {
			return nil, err
		}
	}

	fresh, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: false, LikesCount: fresh.LikesCount}, nil
}
