package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/arix/server/internal/model"
	"github.com/arix/server/internal/port/outbound"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// creationEntity is the creations table row.
type creationEntity struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserID    string         `gorm:"not null;index:idx_creations_user_created,priority:1"`
	Prompt    string         `gorm:"type:text;not null"`
	Content   string         `gorm:"type:text;not null"`
	Type      string         `gorm:"size:32;not null"`
	Publish   bool           `gorm:"not null;default:false;index:idx_creations_publish_created,priority:1"`
	Likes     pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	CreatedAt time.Time      `gorm:"not null;index:idx_creations_user_created,priority:2,sort:desc;index:idx_creations_publish_created,priority:2,sort:desc"`
	UpdatedAt time.Time
}

// TableName returns the table name.
func (creationEntity) TableName() string {
	return "creations"
}

func toCreationEntity(c *model.Creation) *creationEntity {
	likes := pq.StringArray(c.Likes)
	if likes == nil {
		likes = pq.StringArray{}
	}
	return &creationEntity{
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

func (e *creationEntity) toModel() *model.Creation {
	likes := []string(e.Likes)
	if likes == nil {
		likes = []string{}
	}
	return &model.Creation{
		ID:        e.ID.String(),
		UserID:    e.UserID,
		Prompt:    e.Prompt,
		Content:   e.Content,
		Type:      model.CreationType(e.Type),
		Publish:   e.Publish,
		Likes:     likes,
		CreatedAt: e.CreatedAt,
	}
}

// creationAdapter implements outbound.CreationDatabasePort.
type creationAdapter struct {
	db *gorm.DB
}

// NewCreationAdapter creates a new creation database adapter.
func NewCreationAdapter(db *gorm.DB) outbound.CreationDatabasePort {
	return &creationAdapter{db: db}
}

// AutoMigrate creates or updates the creations table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&creationEntity{})
}

func (a *creationAdapter) Create(ctx context.Context, creation *model.Creation) error {
	if creation.CreatedAt.IsZero() {
		creation.CreatedAt = time.Now().UTC()
	}
	e := toCreationEntity(creation)
	e.ID = uuid.New()

	if err := a.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("insert creation: %w", err)
	}
	creation.ID = e.ID.String()
	creation.Likes = []string(e.Likes)
	return nil
}

func (a *creationAdapter) FindByOwner(ctx context.Context, userID string) ([]*model.Creation, error) {
	return a.find(a.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (a *creationAdapter) FindPublished(ctx context.Context) ([]*model.Creation, error) {
	return a.find(a.db.WithContext(ctx).Where("publish = ?", true))
}

func (a *creationAdapter) find(query *gorm.DB) ([]*model.Creation, error) {
	var entities []creationEntity
	if err := query.Order("created_at DESC").Find(&entities).Error; err != nil {
		return nil, err
	}

	out := make([]*model.Creation, 0, len(entities))
	for i := range entities {
		out = append(out, entities[i].toModel())
	}
	return out, nil
}

// ToggleLike flips membership with guarded array updates; the ANY() predicate
// makes each update a no-op when a concurrent toggle already won.
func (a *creationAdapter) ToggleLike(ctx context.Context, id, userID string) (model.LikeResult, bool, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return "", false, nil
	}
	table := func() *gorm.DB {
		return a.db.WithContext(ctx).Model(&creationEntity{})
	}

	for attempt := 0; attempt < 3; attempt++ {
		res := table().Where("id = ? AND NOT (? = ANY(likes))", uid, userID).
			Updates(map[string]any{
				"likes":      gorm.Expr("array_append(likes, ?)", userID),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return "", false, fmt.Errorf("add like: %w", res.Error)
		}
		if res.RowsAffected == 1 {
			return model.LikeResultLiked, true, nil
		}

		res = table().Where("id = ? AND ? = ANY(likes)", uid, userID).
			Updates(map[string]any{
				"likes":      gorm.Expr("array_remove(likes, ?)", userID),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return "", false, fmt.Errorf("remove like: %w", res.Error)
		}
		if res.RowsAffected == 1 {
			return model.LikeResultUnliked, true, nil
		}

		var n int64
		if err := table().Where("id = ?", uid).Count(&n).Error; err != nil {
			return "", false, fmt.Errorf("count creation: %w", err)
		}
		if n == 0 {
			return "", false, nil
		}
	}
	return "", true, fmt.Errorf("toggle like: contention on %s", id)
}

// Compile-time check
var _ outbound.CreationDatabasePort = (*creationAdapter)(nil)
