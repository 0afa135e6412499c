package creation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arix/server/internal/model"
	"github.com/arix/server/internal/port/inbound"
	"github.com/arix/server/internal/port/outbound"
	"github.com/arix/server/internal/utils/logger"
)

// Config holds creation catalog configuration.
type Config struct {
	// AuthorLookupConcurrency bounds parallel directory lookups per feed request.
	AuthorLookupConcurrency int
}

// DefaultConfig returns default catalog configuration.
func DefaultConfig() *Config {
	return &Config{AuthorLookupConcurrency: 8}
}

// Domain implements the creation catalog and like toggler.
type Domain struct {
	creations outbound.CreationDatabasePort
	directory outbound.UserDirectoryPort
	config    *Config
	logger    *zap.Logger
}

// NewDomain creates a new creation domain.
func NewDomain(
	creations outbound.CreationDatabasePort,
	directory outbound.UserDirectoryPort,
	config *Config,
	logger *zap.Logger,
) *Domain {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Domain{
		creations: creations,
		directory: directory,
		config:    config,
		logger:    logger,
	}
}

// ListByOwner returns the user's creations, newest first.
func (d *Domain) ListByOwner(ctx context.Context, userID string) ([]*model.Creation, error) {
	list, err := d.creations.FindByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list creations: %w", err)
	}
	return list, nil
}

// ListPublished returns the community feed with author display data.
// An author the directory cannot resolve is shown as unknown.
func (d *Domain) ListPublished(ctx context.Context) ([]*model.PublishedCreation, error) {
	list, err := d.creations.FindPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("list published creations: %w", err)
	}

	authors := d.resolveAuthors(ctx, list)

	out := make([]*model.PublishedCreation, 0, len(list))
	for _, c := range list {
		out = append(out, &model.PublishedCreation{Creation: *c, Author: authors[c.UserID]})
	}
	return out, nil
}

func (d *Domain) resolveAuthors(ctx context.Context, list []*model.Creation) map[string]model.Author {
	ids := make([]string, 0)
	seen := make(map[string]struct{})
	for _, c := range list {
		if _, ok := seen[c.UserID]; ok {
			continue
		}
		seen[c.UserID] = struct{}{}
		ids = append(ids, c.UserID)
	}

	resolved := make([]model.Author, len(ids))
	log := logger.FromContext(ctx, d.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(d.config.AuthorLookupConcurrency, 1))
	for i, id := range ids {
		g.Go(func() error {
			resolved[i] = d.author(gctx, log, id)
			return nil
		})
	}
	_ = g.Wait()

	authors := make(map[string]model.Author, len(ids))
	for i, id := range ids {
		authors[id] = resolved[i]
	}
	return authors
}

func (d *Domain) author(ctx context.Context, log *zap.Logger, userID string) model.Author {
	if d.directory == nil {
		return model.UnknownAuthor
	}
	profile, err := d.directory.GetUser(ctx, userID)
	if err != nil || profile == nil {
		log.Warn("Author lookup failed",
			zap.String("user_id", userID),
			zap.Bool("missing", profile == nil && err == nil),
			zap.Error(err),
		)
		return model.UnknownAuthor
	}
	name := profile.DisplayName()
	if name == "" {
		name = model.UnknownAuthor.Name
	}
	return model.Author{Name: name, AvatarURL: profile.AvatarURL}
}

// ToggleLike flips the user's like on a creation.
func (d *Domain) ToggleLike(ctx context.Context, userID, creationID string) (model.LikeResult, error) {
	creationID = strings.TrimSpace(creationID)
	if creationID == "" {
		return "", ErrCreationIDRequired
	}

	result, found, err := d.creations.ToggleLike(ctx, creationID, userID)
	if err != nil {
		return "", fmt.Errorf("toggle like: %w", err)
	}
	if !found {
		return "", ErrCreationNotFound
	}

	logger.FromContext(ctx, d.logger).Debug("Like toggled",
		zap.String("user_id", userID),
		zap.String("creation_id", creationID),
		zap.String("result", string(result)),
	)
	return result, nil
}

// Compile-time check
var _ inbound.CreationDomain = (*Domain)(nil)
