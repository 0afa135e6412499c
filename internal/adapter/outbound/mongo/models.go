package mongo

import (
	"time"

	"github.com/arix/server/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// creationDoc is the stored shape of a creation. Field names follow the
// collection written by earlier deployments.
type creationDoc struct {
	ID        bson.ObjectID `bson:"_id"`
	UserID    string        `bson:"userId"`
	Prompt    string        `bson:"prompt"`
	Content   string        `bson:"content"`
	Type      string        `bson:"type"`
	Publish   bool          `bson:"publish"`
	Likes     []string      `bson:"likes"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func toCreationDoc(c *model.Creation) *creationDoc {
	likes := c.Likes
	if likes == nil {
		likes = []string{}
	}
	return &creationDoc{
		UserID:    c.UserID,
		Prompt:    c.Prompt,
		Content:   c.Content,
		Type:      string(c.Type),
		Publish:   c.Publish,
		Likes:     likes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.CreatedAt,
	}
}

func (d *creationDoc) toModel() *model.Creation {
	likes := d.Likes
	if likes == nil {
		likes = []string{}
	}
	return &model.Creation{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Prompt:    d.Prompt,
		Content:   d.Content,
		Type:      model.CreationType(d.Type),
		Publish:   d.Publish,
		Likes:     likes,
		CreatedAt: d.CreatedAt,
	}
}
