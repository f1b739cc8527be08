package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a community post stored in MongoDB
type Post struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AuthorID      string             `json:"author_id" bson:"author_id"`
	MediaURLs     []string           `json:"media_urls" bson:"media_urls"`
	Caption       string             `json:"caption" bson:"caption"`
	LocationName  *string            `json:"location_name,omitempty" bson:"location_name,omitempty"`
	Hashtags      []string           `json:"hashtags" bson:"hashtags"`
	LikesCount    int                `json:"likes_count" bson:"likes_count"`
	CommentsCount int                `json:"comments_count" bson:"comments_count"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
}

// PostDetails is the feed projection of a post. It is recomputed on every
// fetch and never stored.
type PostDetails struct {
	Post              Post        `json:"post"`
	Author            UserCompact `json:"author"`
	LikeCount         int         `json:"like_count"`
	CommentCount      int         `json:"comment_count"`
	IsLiked           bool        `json:"is_liked"`
	IsFollowingAuthor bool        `json:"is_following_author"`

	// PendingComments holds the temporary ids of optimistic comments
	// already counted in CommentCount.
	PendingComments []string `json:"-"`
}

func (d *PostDetails) ID() string { return d.Post.ID.Hex() }

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	MediaURLs    []string `json:"media_urls,omitempty" validate:"max=10,dive,url"`
	Caption      string   `json:"caption" validate:"max=2200"`
	LocationName *string  `json:"location_name,omitempty" validate:"omitempty,max=120"`
	Hashtags     []string `json:"hashtags,omitempty" validate:"max=30,dive,min=1,max=64"`
}

// HasContent reports whether the request carries at least one photo or a
// non-blank caption.
func (r *CreatePostRequest) HasContent() bool {
	return len(r.MediaURLs) > 0 || strings.TrimSpace(r.Caption) != ""
}

// FeedPage is one page of the feed. NextCursor is empty on the last page.
type FeedPage struct {
	Posts      []PostDetails `json:"posts"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// PostThread is a post with its comments, oldest first.
type PostThread struct {
	Post     PostDetails `json:"post"`
	Comments []Comment   `json:"comments"`
}

// NormalizeHashtags returns the ordered set of tags: explicit tags first,
// then the ones written inline in the caption. Tags are lower-cased and the
// leading '#' is dropped.
func NormalizeHashtags(explicit []string, caption string) []string {
	seen := make(map[string]bool)
	tags := make([]string, 0, len(explicit))
	add := func(raw string) {
		tag := strings.ToLower(strings.TrimLeft(strings.TrimSpace(raw), "#"))
		tag = strings.TrimRight(tag, ".,!?;:")
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	for _, t := range explicit {
		add(t)
	}
	for _, word := range strings.Fields(caption) {
		if strings.HasPrefix(word, "#") {
			add(word)
		}
	}
	return tags
}

// Clone returns a copy that shares no slices with d.
func (d PostDetails) Clone() PostDetails {
	d.Post.MediaURLs = append([]string(nil), d.Post.MediaURLs...)
	d.Post.Hashtags = append([]string(nil), d.Post.Hashtags...)
	d.PendingComments = append([]string(nil), d.PendingComments...)
	if d.Post.LocationName != nil {
		loc := *d.Post.LocationName
		d.Post.LocationName = &loc
	}
	return d
}
