package model

import "time"

// CreationType is the kind of artifact a creation holds.
type CreationType string

const (
	CreationTypeArticle   CreationType = "article"
	CreationTypeBlogTitle CreationType = "blog-title"
	CreationTypeImage     CreationType = "image"
)

// Creation is a persisted record of one generated artifact.
type Creation struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	Prompt    string       `json:"prompt"`
	Content   string       `json:"content"`
	Type      CreationType `json:"type"`
	Publish   bool         `json:"publish"`
	Likes     []string     `json:"likes"`
	CreatedAt time.Time    `json:"createdAt"`
}

// LikedBy reports whether userID is in the like set.
func (c *Creation) LikedBy(userID string) bool {
	for _, id := range c.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// Author is the display data attached to published creations.
type Author struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// UnknownAuthor is shown when the directory cannot resolve a creator.
var UnknownAuthor = Author{Name: "Unknown"}

// PublishedCreation is a community feed entry.
type PublishedCreation struct {
	Creation
	Author Author `json:"author"`
}

// LikeResult is the outcome of a like toggle.
type LikeResult string

const (
	LikeResultLiked   LikeResult = "Liked"
	LikeResultUnliked LikeResult = "Unliked"
)
