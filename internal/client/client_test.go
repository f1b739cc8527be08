package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/apperr"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/session"
	"github.com/Anthony-Yangg/reel-royale2-sub001/pkg/config"
)

func testConfig(url string) *config.ClientConfig {
	cfg := config.DefaultClientConfig()
	cfg.APIURL = url
	cfg.RequestTimeout = "2s"
	return cfg
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestFetchFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feed", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		assert.Equal(t, "abc", r.URL.Query().Get("cursor"))
		writeJSON(w, http.StatusOK, models.FeedPage{
			Posts:      []models.PostDetails{{LikeCount: 4, IsLiked: true}},
			NextCursor: "def",
		})
	}))
	defer srv.Close()

	b := New(testConfig(srv.URL), session.New("tok", models.User{ID: "u1"}))
	page, err := b.FetchFeed(context.Background(), "abc", 3)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, 4, page.Posts[0].LikeCount)
	assert.True(t, page.Posts[0].IsLiked)
	assert.Equal(t, "def", page.NextCursor)
}

func TestSetRelationMethods(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Method+" "+r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}))
	defer srv.Close()

	b := New(testConfig(srv.URL), session.New("tok", models.User{ID: "u1"}))
	ctx := context.Background()
	require.NoError(t, b.SetLike(ctx, "p1", true))
	require.NoError(t, b.SetLike(ctx, "p1", false))
	require.NoError(t, b.SetFollow(ctx, "u2", true))
	require.NoError(t, b.SetFollow(ctx, "u2", false))

	assert.Equal(t, []string{
		"POST /posts/p1/like",
		"DELETE /posts/p1/like",
		"POST /users/u2/follow",
		"DELETE /users/u2/follow",
	}, got)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind apperr.Kind
		wantMsg  string
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"message":"Post not found"}`, wantKind: apperr.KindNotFound, wantMsg: "Post not found"},
		{name: "validation", status: http.StatusBadRequest, body: `{"message":"A post needs a photo or a caption"}`, wantKind: apperr.KindValidation, wantMsg: "A post needs a photo or a caption"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"message":"Invalid token"}`, wantKind: apperr.KindUnauthorized, wantMsg: "Invalid token"},
		{name: "gateway", status: http.StatusServiceUnavailable, body: ``, wantKind: apperr.KindNetwork, wantMsg: "Service Unavailable"},
		{name: "server", status: http.StatusInternalServerError, body: `{"message":"Internal server error"}`, wantKind: apperr.KindInternal, wantMsg: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.body != "" {
					w.Header().Set("Content-Type", "application/json")
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			b := New(testConfig(srv.URL), session.New("tok", models.User{ID: "u1"}))
			_, err := b.FetchPost(context.Background(), "p1")
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			assert.Equal(t, tt.wantMsg, apperr.Message(err))
		})
	}
}

func TestSignedOutSessionMakesNoRequest(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	sess := session.New("tok", models.User{ID: "u1"})
	require.NoError(t, sess.SignOut())

	b := New(testConfig(srv.URL), sess)
	err := b.SetLike(context.Background(), "p1", true)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.Zero(t, calls)
}

func TestRequestTimeoutIsNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.RequestTimeout = "50ms"
	b := New(cfg, session.New("tok", models.User{ID: "u1"}))

	_, err := b.FetchProfile(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNetwork)
}

func TestSignIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/signin", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		var req models.SignInRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "hunter2hunter2" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, models.AuthResponse{Token: "jwt", User: models.User{ID: "u1", Username: "reel_rita"}})
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	sess, err := SignIn(context.Background(), cfg, models.SignInRequest{Email: "rita@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.Equal(t, "jwt", sess.Token())
	assert.Equal(t, "u1", sess.UserID())

	_, err = SignIn(context.Background(), cfg, models.SignInRequest{Email: "rita@example.com", Password: "nope"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestUploadMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "pike.jpg", header.Filename)
		assert.Equal(t, "image/jpeg", header.Header.Get("Content-Type"))
		assert.Equal(t, "jpegbytes", string(data))
		writeJSON(w, http.StatusCreated, map[string]string{"url": "https://cdn.example.com/pike.jpg"})
	}))
	defer srv.Close()

	b := New(testConfig(srv.URL), session.New("tok", models.User{ID: "u1"}))
	url, err := b.UploadMedia(context.Background(), MediaUpload{
		Filename:    "pike.jpg",
		ContentType: "image/jpeg",
		Body:        strings.NewReader("jpegbytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/pike.jpg", url)
}
