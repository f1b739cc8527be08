// Package client talks to the Reel Royale API. Backend is the contract the
// client state holders consume; HTTPBackend implements it over resty.
package client

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/apperr"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/session"
	"github.com/Anthony-Yangg/reel-royale2-sub001/pkg/config"
)

// Backend is the remote API as seen by the feed, mutation and profile
// state holders.
type Backend interface {
	FetchFeed(ctx context.Context, cursor string, limit int) (models.FeedPage, error)
	SetLike(ctx context.Context, postID string, liked bool) error
	SetFollow(ctx context.Context, userID string, following bool) error
	UploadMedia(ctx context.Context, m MediaUpload) (string, error)
	CreatePost(ctx context.Context, req models.CreatePostRequest) (*models.Post, error)
	FetchPost(ctx context.Context, postID string) (*models.PostThread, error)
	AddComment(ctx context.Context, postID, text string) (*models.Comment, error)
	// FetchProfile loads userID's profile; an empty id loads the caller's own.
	FetchProfile(ctx context.Context, userID string) (*models.ProfileBundle, error)
	UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error)
}

// MediaUpload is one photo attached to a post draft.
type MediaUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// apiError is the body Echo writes for an HTTPError.
type apiError struct {
	Message string `json:"message"`
}

// HTTPBackend implements Backend against the REST API.
type HTTPBackend struct {
	rc      *resty.Client
	session *session.Session
}

func newResty(cfg *config.ClientConfig) *resty.Client {
	return resty.New().
		SetBaseURL(cfg.APIURL).
		SetTimeout(cfg.GetRequestTimeout()).
		SetHeader("Accept", "application/json")
}

// New returns a backend that authenticates as sess.
func New(cfg *config.ClientConfig, sess *session.Session) *HTTPBackend {
	return &HTTPBackend{rc: newResty(cfg), session: sess}
}

// SignIn exchanges credentials for a new session.
func SignIn(ctx context.Context, cfg *config.ClientConfig, req models.SignInRequest) (*session.Session, error) {
	return authenticate(ctx, newResty(cfg), "auth.signin", "/auth/signin", req)
}

// SignUp creates an account and returns its session.
func SignUp(ctx context.Context, cfg *config.ClientConfig, req models.CreateUserRequest) (*session.Session, error) {
	return authenticate(ctx, newResty(cfg), "auth.signup", "/auth/signup", req)
}

func authenticate(ctx context.Context, rc *resty.Client, op, path string, body interface{}) (*session.Session, error) {
	var out models.AuthResponse
	resp, err := rc.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&apiError{}).
		Post(path)
	if err := check(op, resp, err); err != nil {
		return nil, err
	}
	return session.New(out.Token, out.User), nil
}

func (b *HTTPBackend) request(ctx context.Context, op string) (*resty.Request, error) {
	token := b.session.Token()
	if token == "" {
		return nil, apperr.Unauthorized(op, "Please sign in again")
	}
	return b.rc.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetError(&apiError{}), nil
}

func (b *HTTPBackend) FetchFeed(ctx context.Context, cursor string, limit int) (models.FeedPage, error) {
	var page models.FeedPage
	req, err := b.request(ctx, "feed.fetch")
	if err != nil {
		return page, err
	}
	req.SetQueryParam("limit", strconv.Itoa(limit)).SetResult(&page)
	if cursor != "" {
		req.SetQueryParam("cursor", cursor)
	}
	resp, err := req.Get("/feed")
	return page, check("feed.fetch", resp, err)
}

func (b *HTTPBackend) SetLike(ctx context.Context, postID string, liked bool) error {
	return b.setRelation(ctx, "posts.like", "/posts/{id}/like", postID, liked)
}

func (b *HTTPBackend) SetFollow(ctx context.Context, userID string, following bool) error {
	return b.setRelation(ctx, "users.follow", "/users/{id}/follow", userID, following)
}

// setRelation issues POST to create and DELETE to remove; both are
// idempotent on the server.
func (b *HTTPBackend) setRelation(ctx context.Context, op, path, id string, on bool) error {
	req, err := b.request(ctx, op)
	if err != nil {
		return err
	}
	method := http.MethodPost
	if !on {
		method = http.MethodDelete
	}
	resp, err := req.SetPathParam("id", id).Execute(method, path)
	return check(op, resp, err)
}

func (b *HTTPBackend) UploadMedia(ctx context.Context, m MediaUpload) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	req, err := b.request(ctx, "media.upload")
	if err != nil {
		return "", err
	}
	resp, err := req.
		SetMultipartField("file", m.Filename, m.ContentType, m.Body).
		SetResult(&out).
		Post("/media")
	if err := check("media.upload", resp, err); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (b *HTTPBackend) CreatePost(ctx context.Context, body models.CreatePostRequest) (*models.Post, error) {
	var post models.Post
	req, err := b.request(ctx, "posts.create")
	if err != nil {
		return nil, err
	}
	resp, err := req.SetBody(body).SetResult(&post).Post("/posts")
	if err := check("posts.create", resp, err); err != nil {
		return nil, err
	}
	return &post, nil
}

func (b *HTTPBackend) FetchPost(ctx context.Context, postID string) (*models.PostThread, error) {
	var thread models.PostThread
	req, err := b.request(ctx, "posts.get")
	if err != nil {
		return nil, err
	}
	resp, err := req.SetPathParam("id", postID).SetResult(&thread).Get("/posts/{id}")
	if err := check("posts.get", resp, err); err != nil {
		return nil, err
	}
	return &thread, nil
}

func (b *HTTPBackend) AddComment(ctx context.Context, postID, text string) (*models.Comment, error) {
	var comment models.Comment
	req, err := b.request(ctx, "comments.create")
	if err != nil {
		return nil, err
	}
	resp, err := req.
		SetPathParam("id", postID).
		SetBody(models.CreateCommentRequest{Text: text}).
		SetResult(&comment).
		Post("/posts/{id}/comments")
	if err := check("comments.create", resp, err); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (b *HTTPBackend) FetchProfile(ctx context.Context, userID string) (*models.ProfileBundle, error) {
	var bundle models.ProfileBundle
	req, err := b.request(ctx, "profile.get")
	if err != nil {
		return nil, err
	}
	req.SetResult(&bundle)
	var resp *resty.Response
	if userID == "" {
		resp, err = req.Get("/profile")
	} else {
		resp, err = req.SetPathParam("id", userID).Get("/users/{id}/profile")
	}
	if err := check("profile.get", resp, err); err != nil {
		return nil, err
	}
	return &bundle, nil
}

func (b *HTTPBackend) UpdateProfile(ctx context.Context, body models.UpdateProfileRequest) (*models.User, error) {
	var user models.User
	req, err := b.request(ctx, "profile.update")
	if err != nil {
		return nil, err
	}
	resp, err := req.SetBody(body).SetResult(&user).Put("/profile")
	if err := check("profile.update", resp, err); err != nil {
		return nil, err
	}
	return &user, nil
}

// check classifies a transport error or an error status.
func check(op string, resp *resty.Response, err error) error {
	if err != nil {
		return apperr.Network(op, err)
	}
	if !resp.IsError() {
		return nil
	}
	msg := ""
	if e, ok := resp.Error().(*apiError); ok && e != nil {
		msg = e.Message
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode())
	}
	return apperr.New(apperr.FromStatus(resp.StatusCode()), op, msg)
}
