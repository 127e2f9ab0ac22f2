package server

import (
	"fmt"
	"net/http"
	"testing"

	"tidepool/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowAndUnfollow(t *testing.T) {
	_, app := newTestServer(t)
	fan := signupUser(t, app, "limpet")
	star := signupUser(t, app, "starfish")

	followPath := fmt.Sprintf("/api/v1/users/%d/follow", star.ID)

	var state struct {
		Following bool `json:"following"`
	}

	// Following twice counts once.
	for i := 0; i < 2; i++ {
		resp := doJSON(t, app, http.MethodPost, followPath, fan.Token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decodeData(t, resp, &state)
		_ = resp.Body.Close()
		assert.True(t, state.Following)
	}

	profile := doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/api/v1/users/%d", star.ID), fan.Token, nil)
	var target models.User
	decodeData(t, profile, &target)
	_ = profile.Body.Close()
	assert.Equal(t, 1, target.FollowersCount)

	unfollow := doJSON(t, app, http.MethodDelete, followPath, fan.Token, nil)
	require.Equal(t, http.StatusOK, unfollow.StatusCode)
	decodeData(t, unfollow, &state)
	_ = unfollow.Body.Close()
	assert.False(t, state.Following)

	profile = doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/api/v1/users/%d", star.ID), fan.Token, nil)
	decodeData(t, profile, &target)
	_ = profile.Body.Close()
	assert.Equal(t, 0, target.FollowersCount)
}

func TestFollow_SelfAndMissing(t *testing.T) {
	_, app := newTestServer(t)
	user := signupUser(t, app, "barnacle")

	self := doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/v1/users/%d/follow", user.ID), user.Token, nil)
	_ = self.Body.Close()
	assert.Equal(t, http.StatusBadRequest, self.StatusCode)

	missing := doJSON(t, app, http.MethodPost, "/api/v1/users/99999/follow", user.Token, nil)
	_ = missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestBlockFollower(t *testing.T) {
	_, app := newTestServer(t)
	fan := signupUser(t, app, "mussel")
	star := signupUser(t, app, "anemone")

	follow := doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/v1/users/%d/follow", star.ID), fan.Token, nil)
	_ = follow.Body.Close()
	require.Equal(t, http.StatusOK, follow.StatusCode)

	block := doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/v1/users/%d/block", fan.ID), star.Token, nil)
	_ = block.Body.Close()
	require.Equal(t, http.StatusOK, block.StatusCode)

	// A blocked user cannot follow again.
	refollow := doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/v1/users/%d/follow", star.ID), fan.Token, nil)
	_ = refollow.Body.Close()
	assert.Equal(t, http.StatusConflict, refollow.StatusCode)

	// The blocked edge no longer counts.
	profile := doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/api/v1/users/%d", star.ID), fan.Token, nil)
	var target models.User
	decodeData(t, profile, &target)
	_ = profile.Body.Close()
	assert.Equal(t, 0, target.FollowersCount)
}

func TestListFollowers_Paginated(t *testing.T) {
	_, app := newTestServer(t)
	star := signupUser(t, app, "beacon")

	for i := 0; i < 5; i++ {
		fan := signupUser(t, app, fmt.Sprintf("fan%d", i))
		resp := doJSON(t, app, http.MethodPost,
			fmt.Sprintf("/api/v1/users/%d/follow", star.ID), fan.Token, nil)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	var page struct {
		Users      []models.User `json:"users"`
		NextCursor string        `json:"next_cursor"`
		HasMore    bool          `json:"has_more"`
	}

	first := doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/api/v1/users/%d/followers?limit=3", star.ID), "", nil)
	require.Equal(t, http.StatusOK, first.StatusCode)
	decodeData(t, first, &page)
	_ = first.Body.Close()
	require.Len(t, page.Users, 3)
	require.True(t, page.HasMore)

	second := doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/api/v1/users/%d/followers?limit=3&cursor=%s", star.ID, page.NextCursor), "", nil)
	require.Equal(t, http.StatusOK, second.StatusCode)
	decodeData(t, second, &page)
	_ = second.Body.Close()
	assert.Len(t, page.Users, 2)
	assert.False(t, page.HasMore)
}

func TestListFollowing(t *testing.T) {
	_, app := newTestServer(t)
	fan := signupUser(t, app, "whelk")
	star := signupUser(t, app, "kelpbed")

	resp := doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/v1/users/%d/follow", star.ID), fan.Token, nil)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	list := doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/api/v1/users/%d/following", fan.ID), "", nil)
	defer func() { _ = list.Body.Close() }()
	require.Equal(t, http.StatusOK, list.StatusCode)

	var page struct {
		Users []models.User `json:"users"`
	}
	decodeData(t, list, &page)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "kelpbed", page.Users[0].Username)
}
