package handlers

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/apperr"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"github.com/Anthony-Yangg/reel-royale2-sub001/pkg/firebase"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errStoreDown = errors.New("store unavailable")

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{users: make(map[string]*models.User)}
	for i := range users {
		u := users[i]
		f.users[u.ID] = &u
	}
	return f
}

func (f *fakeUsers) find(match func(*models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("users.find", "User not found")
}

func (f *fakeUsers) CreateUser(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUsers) GetUserByID(id string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.ID == id })
}

func (f *fakeUsers) GetUserByEmail(email string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Email == email })
}

func (f *fakeUsers) GetUserByUsername(username string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Username == username })
}

func (f *fakeUsers) GetUserByFirebaseUID(uid string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.FirebaseUID != nil && *u.FirebaseUID == uid })
}

func (f *fakeUsers) GetUsersByIDs(ids []string) (map[string]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]models.User)
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = *u
		}
	}
	return out, nil
}

func (f *fakeUsers) UpdateUser(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

type fakePosts struct {
	mu    sync.Mutex
	posts map[string]*models.Post
	order []string
}

func newFakePosts() *fakePosts {
	return &fakePosts{posts: make(map[string]*models.Post)}
}

func (f *fakePosts) add(authorID, caption string) *models.Post {
	p := &models.Post{AuthorID: authorID, Caption: caption}
	_ = f.CreatePost(context.Background(), p)
	return p
}

func (f *fakePosts) CreatePost(_ context.Context, post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	cp := *post
	f.posts[post.ID.Hex()] = &cp
	f.order = append(f.order, post.ID.Hex())
	return nil
}

func (f *fakePosts) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, apperr.NotFound("posts.get", "Post not found")
	}
	cp := *p
	return &cp, nil
}

// GetFeedPage treats the cursor as an index into the newest-first order.
func (f *fakePosts) GetFeedPage(_ context.Context, cursor string, limit int64) ([]models.Post, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	start := 0
	if cursor != "" {
		for i := len(f.order) - 1; i >= 0; i-- {
			if f.order[i] == cursor {
				start = len(f.order) - i
			}
		}
	}
	var page []models.Post
	for i := len(f.order) - 1 - start; i >= 0 && int64(len(page)) < limit; i-- {
		page = append(page, *f.posts[f.order[i]])
	}
	next := ""
	if int64(len(page)) == limit && start+len(page) < len(f.order) {
		next = page[len(page)-1].ID.Hex()
	}
	return page, next, nil
}

func (f *fakePosts) IncrementLikesCount(_ context.Context, postID string, delta int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.posts[postID]
	p.LikesCount += delta
	return p.LikesCount, nil
}

func (f *fakePosts) IncrementCommentsCount(_ context.Context, postID string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts[postID].CommentsCount += delta
	return nil
}

type fakeLikes struct {
	mu    sync.Mutex
	likes map[[2]string]bool
}

func newFakeLikes() *fakeLikes { return &fakeLikes{likes: make(map[[2]string]bool)} }

func (f *fakeLikes) CreateLike(postID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := [2]string{postID, userID}
	if f.likes[k] {
		return false, nil
	}
	f.likes[k] = true
	return true, nil
}

func (f *fakeLikes) DeleteLike(postID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := [2]string{postID, userID}
	if !f.likes[k] {
		return false, nil
	}
	delete(f.likes, k)
	return true, nil
}

func (f *fakeLikes) HasUserLikedPost(postID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.likes[[2]string{postID, userID}], nil
}

func (f *fakeLikes) GetLikedPostIDs(userID string, postIDs []string) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]bool)
	for _, id := range postIDs {
		if f.likes[[2]string{id, userID}] {
			out[id] = true
		}
	}
	return out, nil
}

type fakeFollows struct {
	mu      sync.Mutex
	follows map[[2]string]bool
}

func newFakeFollows() *fakeFollows { return &fakeFollows{follows: make(map[[2]string]bool)} }

func (f *fakeFollows) CreateFollow(followerID, followingID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := [2]string{followerID, followingID}
	if f.follows[k] {
		return false, nil
	}
	f.follows[k] = true
	return true, nil
}

func (f *fakeFollows) DeleteFollow(followerID, followingID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := [2]string{followerID, followingID}
	existed := f.follows[k]
	delete(f.follows, k)
	return existed, nil
}

func (f *fakeFollows) IsFollowing(followerID, followingID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.follows[[2]string{followerID, followingID}], nil
}

func (f *fakeFollows) GetFollowingIDs(followerID string, candidates []string) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]bool)
	for _, id := range candidates {
		if f.follows[[2]string{followerID, id}] {
			out[id] = true
		}
	}
	return out, nil
}

type fakeComments struct {
	mu       sync.Mutex
	comments []models.Comment
}

func (f *fakeComments) CreateComment(c *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	f.comments = append(f.comments, *c)
	return nil
}

func (f *fakeComments) GetCommentsByPostID(postID string) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Comment{}
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeNotifications struct {
	mu    sync.Mutex
	items []models.Notification
}

func (f *fakeNotifications) CreateNotification(n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = uint(len(f.items) + 1)
	f.items = append(f.items, *n)
	return nil
}

func (f *fakeNotifications) GetByRecipientID(recipientID string, page, limit int) ([]models.Notification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var mine []models.Notification
	for _, n := range f.items {
		if n.RecipientID == recipientID {
			mine = append(mine, n)
		}
	}
	return mine, int64(len(mine)), nil
}

func (f *fakeNotifications) GetUnreadCount(recipientID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, item := range f.items {
		if item.RecipientID == recipientID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) MarkAsRead(recipientID string, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].RecipientID == recipientID {
			f.items[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeNotifications) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

type fakeCatches struct {
	catches []models.Catch
	spots   map[string]models.Spot

	failRecent bool
	failArea   bool
}

func (f *fakeCatches) CreateCatch(c *models.Catch) error {
	c.ID = uuid.NewString()
	f.catches = append(f.catches, *c)
	return nil
}

func (f *fakeCatches) GetCatchesByUser(userID string) ([]models.Catch, error) {
	var out []models.Catch
	for _, c := range f.catches {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCatches) GetRecentCatches(userID string, limit int) ([]models.Catch, error) {
	if f.failRecent {
		return nil, errStoreDown
	}
	own, _ := f.GetCatchesByUser(userID)
	if len(own) > limit {
		own = own[:limit]
	}
	return own, nil
}

func (f *fakeCatches) GetCatchesAtUserSpots(string) ([]models.Catch, error) {
	if f.failArea {
		return nil, errStoreDown
	}
	return f.catches, nil
}

func (f *fakeCatches) CreateSpot(s *models.Spot) error {
	s.ID = uuid.NewString()
	f.spots[s.ID] = *s
	return nil
}

func (f *fakeCatches) GetSpot(id string) (*models.Spot, error) {
	s, ok := f.spots[id]
	if !ok {
		return nil, apperr.NotFound("spots.get", "Spot not found")
	}
	return &s, nil
}

func (f *fakeCatches) GetSpotsByIDs(ids []string) (map[string]models.Spot, error) {
	out := make(map[string]models.Spot)
	for _, id := range ids {
		if s, ok := f.spots[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func (f *fakeCatches) ListSpots(territory string) ([]models.Spot, error) {
	out := []models.Spot{}
	for _, s := range f.spots {
		if territory == "" || s.Territory == territory {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeVerifier struct {
	identity *firebase.Identity
	err      error
}

func (f fakeVerifier) VerifyIdentity(context.Context, string) (*firebase.Identity, error) {
	return f.identity, f.err
}

type fakeStore struct {
	folder, filename, contentType string
	body                          []byte
}

func (f *fakeStore) Upload(_ context.Context, folder, filename, contentType string, body io.Reader) (string, error) {
	f.folder, f.filename, f.contentType = folder, filename, contentType
	var err error
	f.body, err = io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return "https://media.example.com/" + folder + "/" + filename, nil
}
