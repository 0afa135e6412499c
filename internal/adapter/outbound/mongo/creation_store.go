package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/arix/server/internal/model"
	"github.com/arix/server/internal/port/outbound"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const colCreations = "creations"

// creationStore implements outbound.CreationDatabasePort on MongoDB.
type creationStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewCreationStore creates a MongoDB creation store.
func NewCreationStore(db *mongo.Database) outbound.CreationDatabasePort {
	return &creationStore{
		coll: db.Collection(colCreations),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Migrate creates the indexes used by owner and feed queries.
func Migrate(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(colCreations).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "publish", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("migrate %s indexes: %w", colCreations, err)
	}
	return nil
}

func (s *creationStore) Create(ctx context.Context, creation *model.Creation) error {
	if creation.CreatedAt.IsZero() {
		creation.CreatedAt = s.now()
	}
	doc := toCreationDoc(creation)
	doc.ID = bson.NewObjectID()

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert creation: %w", err)
	}
	creation.ID = doc.ID.Hex()
	creation.Likes = doc.Likes
	return nil
}

func (s *creationStore) FindByOwner(ctx context.Context, userID string) ([]*model.Creation, error) {
	return s.find(ctx, bson.M{"userId": userID})
}

func (s *creationStore) FindPublished(ctx context.Context) ([]*model.Creation, error) {
	return s.find(ctx, bson.M{"publish": true})
}

func (s *creationStore) find(ctx context.Context, filter bson.M) ([]*model.Creation, error) {
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find creations: %w", err)
	}

	var docs []creationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode creations: %w", err)
	}

	out := make([]*model.Creation, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out, nil
}

// ToggleLike adds the like when absent, otherwise removes it. Each branch is a
// single conditional update so concurrent toggles never lose or duplicate a like.
func (s *creationStore) ToggleLike(ctx context.Context, id, userID string) (model.LikeResult, bool, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return "", false, nil
	}

	for attempt := 0; attempt < 3; attempt++ {
		res, err := s.coll.UpdateOne(ctx,
			bson.M{"_id": oid, "likes": bson.M{"$ne": userID}},
			bson.M{"$addToSet": bson.M{"likes": userID}, "$set": bson.M{"updatedAt": s.now()}},
		)
		if err != nil {
			return "", false, fmt.Errorf("add like: %w", err)
		}
		if res.MatchedCount == 1 {
			return model.LikeResultLiked, true, nil
		}

		res, err = s.coll.UpdateOne(ctx,
			bson.M{"_id": oid, "likes": userID},
			bson.M{"$pull": bson.M{"likes": userID}, "$set": bson.M{"updatedAt": s.now()}},
		)
		if err != nil {
			return "", false, fmt.Errorf("remove like: %w", err)
		}
		if res.MatchedCount == 1 {
			return model.LikeResultUnliked, true, nil
		}

		n, err := s.coll.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return "", false, fmt.Errorf("count creation: %w", err)
		}
		if n == 0 {
			return "", false, nil
		}
		// A concurrent toggle flipped the state between the two updates.
	}
	return "", true, fmt.Errorf("toggle like: contention on %s", id)
}

// Compile-time check
var _ outbound.CreationDatabasePort = (*creationStore)(nil)
