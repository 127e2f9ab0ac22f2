package service

import (
	"context"

	"tidepool/internal/models"
	"tidepool/internal/pagination"
	"tidepool/internal/repository"
)

const (
	defaultFollowLimit = 20
	maxFollowLimit     = 100
)

// FollowService manages the follow graph and the denormalized
// follower/following counters on users.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

type ListFollowsInput struct {
	UserID uint
	Limit  int
	Cursor string
}

// FollowPage is one page of a cursor-paginated user listing.
type FollowPage struct {
	Users      []*models.User `json:"users"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}

// FollowState reports the relationship after a follow mutation.
type FollowState struct {
	Following bool `json:"following"`
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo}
}

func (s *FollowService) requireActiveUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User", userID)
	}
	if !user.Active {
		return nil, models.NewNotFoundError("User", userID)
	}
	return user, nil
}

// Follow creates an active edge and bumps both counters. Re-following
// is a no-op; a blocked edge rejects the request.
func (s *FollowService) Follow(ctx context.Context, followerID, followingID uint) (*FollowState, error) {
	if followerID == followingID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}
	if _, err := s.requireActiveUser(ctx, followingID); err != nil {
		return nil, err
	}

	edge, err := s.followRepo.Get(ctx, followerID, followingID)
	if err != nil {
		return nil, err
	}
	if edge != nil && edge.Status == models.FollowStatusBlocked {
		return nil, models.NewConflictError("You cannot follow this user")
	}

	created, err := s.followRepo.Follow(ctx, followerID, followingID)
	if err != nil {
		return nil, err
	}
	if created {
		if err := applyCounterDelta(ctx, "user_followers", func() error {
			return s.userRepo.AddFollowersCount(ctx, followingID, 1)
		}); err != nil {
			return nil, err
		}
		if err := applyCounterDelta(ctx, "user_following", func() error {
			return s.userRepo.AddFollowingCount(ctx, followerID, 1)
		}); err != nil {
			return nil, err
		}
	}
	return &FollowState{Following: true}, nil
}

// Unfollow removes an active edge and drops both counters. Unfollowing
// someone you do not follow is a no-op.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followingID uint) (*FollowState, error) {
	if followerID == followingID {
		return nil, models.NewValidationError("You cannot unfollow yourself")
	}

	removed, err := s.followRepo.Unfollow(ctx, followerID, followingID)
	if err != nil {
		return nil, err
	}
	if removed {
		if err := applyCounterDelta(ctx, "user_followers", func() error {
			return s.userRepo.AddFollowersCount(ctx, followingID, -1)
		}); err != nil {
			return nil, err
		}
		if err := applyCounterDelta(ctx, "user_following", func() error {
			return s.userRepo.AddFollowingCount(ctx, followerID, -1)
		}); err != nil {
			return nil, err
		}
	}
	return &FollowState{Following: false}, nil
}

// BlockFollower blocks one of the caller's followers. The edge stays as
// a tombstone so the blocked user cannot re-follow; an active edge
// leaves the counters on the way out.
func (s *FollowService) BlockFollower(ctx context.Context, userID, followerID uint) error {
	if userID == followerID {
		return models.NewValidationError("You cannot block yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, followerID); err != nil {
		return notFoundOr(err, "User", followerID)
	}

	edge, err := s.followRepo.Get(ctx, followerID, userID)
	if err != nil {
		return err
	}

	if edge == nil {
		// No existing relationship: create the edge straight into the
		// blocked state, skipping counters entirely.
		if _, err := s.followRepo.Follow(ctx, followerID, userID); err != nil {
			return err
		}
		_, err := s.followRepo.Block(ctx, followerID, userID)
		return err
	}

	if edge.Status == models.FollowStatusBlocked {
		return nil
	}

	changed, err := s.followRepo.Block(ctx, followerID, userID)
	if err != nil {
		return err
	}
	if changed {
		if err := applyCounterDelta(ctx, "user_followers", func() error {
			return s.userRepo.AddFollowersCount(ctx, userID, -1)
		}); err != nil {
			return err
		}
		if err := applyCounterDelta(ctx, "user_following", func() error {
			return s.userRepo.AddFollowingCount(ctx, followerID, -1)
		}); err != nil {
			return err
		}
	}
	return nil
}

// ListFollowers returns a page of the user's followers, newest first.
func (s *FollowService) ListFollowers(ctx context.Context, in ListFollowsInput) (*FollowPage, error) {
	if _, err := s.requireActiveUser(ctx, in.UserID); err != nil {
		return nil, err
	}

	cur, err := pagination.Decode(in.Cursor)
	if err != nil {
		return nil, err
	}
	limit := pagination.ClampLimit(in.Limit, defaultFollowLimit, maxFollowLimit)

	edges, err := s.followRepo.ListFollowers(ctx, in.UserID, limit+1, cur)
	if err != nil {
		return nil, err
	}
	return buildFollowPage(edges, limit, func(f *models.Follow) *models.User {
		return &f.Follower
	}), nil
}

// ListFollowing returns a page of users the user follows, newest first.
func (s *FollowService) ListFollowing(ctx context.Context, in ListFollowsInput) (*FollowPage, error) {
	if _, err := s.requireActiveUser(ctx, in.UserID); err != nil {
		return nil, err
	}

	cur, err := pagination.Decode(in.Cursor)
	if err != nil {
		return nil, err
	}
	limit := pagination.ClampLimit(in.Limit, defaultFollowLimit, maxFollowLimit)

	edges, err := s.followRepo.ListFollowing(ctx, in.UserID, limit+1, cur)
	if err != nil {
		return nil, err
	}
	return buildFollowPage(edges, limit, func(f *models.Follow) *models.User {
		return &f.Following
	}), nil
}

func buildFollowPage(edges []*models.Follow, limit int, pick func(*models.Follow) *models.User) *FollowPage {
	page := &FollowPage{Users: []*models.User{}}
	hasMore := len(edges) > limit
	if hasMore {
		edges = edges[:limit]
	}
	for _, e := range edges {
		page.Users = append(page.Users, pick(e))
	}
	page.HasMore = hasMore
	if hasMore && len(edges) > 0 {
		page.NextCursor = pagination.FromFollow(edges[len(edges)-1]).Encode()
	}
	return page
}
