package repositories

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/apperr"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetFeedPage(ctx context.Context, cursor string, limit int64) ([]models.Post, string, error)
	IncrementLikesCount(ctx context.Context, postID string, delta int) (int, error)
	IncrementCommentsCount(ctx context.Context, postID string, delta int) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if post.MediaURLs == nil {
		post.MediaURLs = []string{}
	}
	if post.Hashtags == nil {
		post.Hashtags = []string{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("posts.get", "Post not found")
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("posts.get", "Post not found")
		}
		return nil, err
	}
	return &post, nil
}

// GetFeedPage returns posts newest first, starting after cursor. The returned
// cursor is empty once the feed is exhausted.
func (r *MongoPostRepository) GetFeedPage(ctx context.Context, cursor string, limit int64) ([]models.Post, string, error) {
	filter := bson.M{}
	if cursor != "" {
		at, id, err := DecodeCursor(cursor)
		if err != nil {
			return nil, "", apperr.Validation("posts.feed", "Invalid cursor")
		}
		filter = bson.M{"$or": bson.A{
			bson.M{"created_at": bson.M{"$lt": at}},
			bson.M{"created_at": at, "_id": bson.M{"$lt": id}},
		}}
	}

	// one extra document tells us whether another page exists
	findOptions := options.Find().
		SetLimit(limit + 1).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, "", err
	}
	defer cur.Close(ctx)

	var posts []models.Post
	if err = cur.All(ctx, &posts); err != nil {
		return nil, "", err
	}

	next := ""
	if int64(len(posts)) > limit {
		posts = posts[:limit]
		last := posts[len(posts)-1]
		next = EncodeCursor(last.CreatedAt, last.ID)
	}
	return posts, next, nil
}

// IncrementLikesCount moves the likes counter by delta and returns the new value
func (r *MongoPostRepository) IncrementLikesCount(ctx context.Context, postID string, delta int) (int, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return 0, apperr.NotFound("posts.likes", "Post not found")
	}
	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID},
		bson.M{"$inc": bson.M{"likes_count": delta}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, apperr.NotFound("posts.likes", "Post not found")
		}
		return 0, err
	}
	return post.LikesCount, nil
}

// IncrementCommentsCount moves the comments counter by delta
func (r *MongoPostRepository) IncrementCommentsCount(ctx context.Context, postID string, delta int) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return apperr.NotFound("posts.comments", "Post not found")
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{"comments_count": delta}})
	return err
}

// EncodeCursor builds the opaque feed cursor for the post at (at, id).
func EncodeCursor(at time.Time, id primitive.ObjectID) string {
	raw := fmt.Sprintf("%d:%s", at.UnixMilli(), id.Hex())
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor reverses EncodeCursor.
func DecodeCursor(cursor string) (time.Time, primitive.ObjectID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, primitive.NilObjectID, err
	}
	ms, hex, ok := strings.Cut(string(raw), ":")
	if !ok {
		return time.Time{}, primitive.NilObjectID, fmt.Errorf("malformed cursor")
	}
	var millis int64
	if _, err := fmt.Sscanf(ms, "%d", &millis); err != nil {
		return time.Time{}, primitive.NilObjectID, fmt.Errorf("malformed cursor time: %w", err)
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return time.Time{}, primitive.NilObjectID, fmt.Errorf("malformed cursor id: %w", err)
	}
	return time.UnixMilli(millis).UTC(), id, nil
}
