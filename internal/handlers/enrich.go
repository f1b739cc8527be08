package handlers

import (
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/repositories"
)

// postEnricher turns stored posts into the PostDetails projection seen by
// one viewer: author record, counts, and the viewer's like/follow flags.
type postEnricher struct {
	userRepository   repositories.UserRepository
	likeRepository   repositories.LikeRepository
	followRepository repositories.FollowRepository
}

func (e *postEnricher) enrich(viewerID string, posts []models.Post) ([]models.PostDetails, error) {
	postIDs := make([]string, len(posts))
	authorSet := make(map[string]bool)
	authorIDs := make([]string, 0, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID.Hex()
		if !authorSet[p.AuthorID] {
			authorSet[p.AuthorID] = true
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}

	authors, err := e.userRepository.GetUsersByIDs(authorIDs)
	if err != nil {
		return nil, err
	}
	liked, err := e.likeRepository.GetLikedPostIDs(viewerID, postIDs)
	if err != nil {
		return nil, err
	}
	following, err := e.followRepository.GetFollowingIDs(viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	details := make([]models.PostDetails, len(posts))
	for i, p := range posts {
		author := models.UserCompact{ID: p.AuthorID}
		if u, ok := authors[p.AuthorID]; ok {
			author = u.ToCompact()
		}
		details[i] = models.PostDetails{
			Post:              p,
			Author:            author,
			LikeCount:         p.LikesCount,
			CommentCount:      p.CommentsCount,
			IsLiked:           liked[postIDs[i]],
			IsFollowingAuthor: following[p.AuthorID],
		}
	}
	return details, nil
}
