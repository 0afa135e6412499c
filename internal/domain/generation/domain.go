package generation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arix/server/internal/domain/entitlement"
	"github.com/arix/server/internal/infra/resilience"
	"github.com/arix/server/internal/model"
	"github.com/arix/server/internal/port/inbound"
	"github.com/arix/server/internal/port/outbound"
	"github.com/arix/server/internal/utils/logger"
)

// Generation outcomes reported to the recorder.
const (
	OutcomeSuccess = "success"
	OutcomeDenied  = "denied"
	OutcomeFailed  = "failed"
)

// Recorder receives generation telemetry.
type Recorder interface {
	RecordGeneration(action, outcome string)
	RecordReconciliation(action string)
}

// Domain implements the generation dispatcher.
type Domain struct {
	gate      *entitlement.Gate
	text      outbound.TextGeneratorPort
	images    outbound.ImageGeneratorPort
	remover   outbound.BackgroundRemoverPort
	storage   outbound.ObjectStoragePort
	creations outbound.CreationDatabasePort
	recorder  Recorder
	config    *Config
	logger    *zap.Logger
}

// NewDomain creates a new generation domain.
func NewDomain(
	gate *entitlement.Gate,
	text outbound.TextGeneratorPort,
	images outbound.ImageGeneratorPort,
	remover outbound.BackgroundRemoverPort,
	storage outbound.ObjectStoragePort,
	creations outbound.CreationDatabasePort,
	recorder Recorder,
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
		gate:      gate,
		text:      text,
		images:    images,
		remover:   remover,
		storage:   storage,
		creations: creations,
		recorder:  recorder,
		config:    config,
		logger:    logger,
	}
}

// outcome is what a successful provider step hands back to dispatch.
type outcome struct {
	result   string
	creation *model.Creation
}

// dispatch admits the action, runs fn and settles the ticket by fn's result.
// A creation that fails to persist after success is reconciled, not surfaced.
func (d *Domain) dispatch(ctx context.Context, identity *model.Identity, action model.Action, fn func(ctx context.Context) (*outcome, error)) (string, error) {
	log := logger.FromContext(ctx, d.logger)

	ticket, err := d.gate.Authorize(ctx, identity, action)
	if err != nil {
		if errors.Is(err, entitlement.ErrQuotaExceeded) {
			d.record(action, OutcomeDenied)
		}
		return "", err
	}

	out, err := fn(ctx)
	if err != nil {
		_ = ticket.Release(ctx)
		d.record(action, OutcomeFailed)
		log.Warn("Generation failed",
			zap.String("user_id", identity.UserID),
			zap.String("action", string(action)),
			zap.Error(err),
		)
		return "", err
	}

	// The artifact exists already, so the result is returned even when the
	// charge cannot be settled.
	if err := ticket.Commit(context.WithoutCancel(ctx)); err != nil {
		if d.recorder != nil {
			d.recorder.RecordReconciliation(string(action))
		}
		log.Error("Failed to commit quota",
			zap.String("event", "quota_commit_failed"),
			zap.String("user_id", identity.UserID),
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
	d.record(action, OutcomeSuccess)

	if out.creation != nil {
		d.persist(ctx, log, action, out.creation)
	}
	return out.result, nil
}

func (d *Domain) persist(ctx context.Context, log *zap.Logger, action model.Action, creation *model.Creation) {
	err := d.creations.Create(context.WithoutCancel(ctx), creation)
	if err == nil {
		return
	}
	if d.recorder != nil {
		d.recorder.RecordReconciliation(string(action))
	}
	log.Error("Failed to persist creation",
		zap.String("event", "creation_reconciliation"),
		zap.String("user_id", creation.UserID),
		zap.String("action", string(action)),
		zap.String("type", string(creation.Type)),
		zap.String("artifact", reference(creation)),
		zap.Error(err),
	)
}

// reference identifies the artifact in reconciliation logs without dumping it.
func reference(c *model.Creation) string {
	if c.Type == model.CreationTypeImage {
		return c.Content
	}
	const n = 64
	if len(c.Content) > n {
		return c.Content[:n] + "..."
	}
	return c.Content
}

func (d *Domain) record(action model.Action, outcome string) {
	if d.recorder != nil {
		d.recorder.RecordGeneration(string(action), outcome)
	}
}

// GenerateArticle writes an article for the prompt.
func (d *Domain) GenerateArticle(ctx context.Context, identity *model.Identity, in *model.ArticleRequest) (string, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return "", ErrPromptRequired
	}
	return d.dispatch(ctx, identity, model.ActionArticle, func(ctx context.Context) (*outcome, error) {
		content, err := d.text.Generate(ctx, &outbound.TextGenerationRequest{
			Prompt:      prompt,
			MaxTokens:   d.config.articleTokens(in.Length),
			Temperature: d.config.Temperature,
		})
		if err != nil {
			return nil, providerError(err)
		}
		return &outcome{result: content, creation: &model.Creation{
			UserID:  identity.UserID,
			Prompt:  prompt,
			Content: content,
			Type:    model.CreationTypeArticle,
		}}, nil
	})
}

// GenerateBlogTitle suggests blog titles for the prompt.
func (d *Domain) GenerateBlogTitle(ctx context.Context, identity *model.Identity, in *model.BlogTitleRequest) (string, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return "", ErrPromptRequired
	}
	return d.dispatch(ctx, identity, model.ActionBlogTitle, func(ctx context.Context) (*outcome, error) {
		content, err := d.text.Generate(ctx, &outbound.TextGenerationRequest{
			Prompt:      prompt,
			MaxTokens:   int32(d.config.BlogTitleMaxTokens),
			Temperature: d.config.Temperature,
		})
		if err != nil {
			return nil, providerError(err)
		}
		return &outcome{result: content, creation: &model.Creation{
			UserID:  identity.UserID,
			Prompt:  prompt,
			Content: content,
			Type:    model.CreationTypeBlogTitle,
		}}, nil
	})
}

// GenerateImage synthesizes an image, stores it and catalogs it as a creation.
func (d *Domain) GenerateImage(ctx context.Context, identity *model.Identity, in *model.ImageRequest) (string, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return "", ErrPromptRequired
	}
	return d.dispatch(ctx, identity, model.ActionImage, func(ctx context.Context) (*outcome, error) {
		img, err := d.images.TextToImage(ctx, prompt)
		if err != nil {
			return nil, providerError(err)
		}

		key := fmt.Sprintf("images/%s/%s.png", identity.UserID, uuid.NewString())
		contentType := img.ContentType
		if contentType == "" {
			contentType = "image/png"
		}
		if err := d.storage.Put(ctx, key, bytes.NewReader(img.Data), int64(len(img.Data)), contentType); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
		}
		url, err := d.storage.DurableURL(ctx, key)
		if err != nil {
			d.discard(ctx, key)
			return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
		}

		return &outcome{result: url, creation: &model.Creation{
			UserID:  identity.UserID,
			Prompt:  prompt,
			Content: url,
			Type:    model.CreationTypeImage,
			Publish: in.Publish,
		}}, nil
	})
}

// RemoveBackground strips the background from an uploaded image.
// The upload is staged in a temporary file that is removed on every path.
func (d *Domain) RemoveBackground(ctx context.Context, identity *model.Identity, in *inbound.RemoveBackgroundInput) (string, error) {
	if in == nil || in.File == nil {
		return "", ErrImageRequired
	}

	path, size, err := d.stage(in.File)
	if path != "" {
		defer os.Remove(path)
	}
	if err != nil {
		return "", err
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detect upload type: %w", err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, mtype.String())
	}

	return d.dispatch(ctx, identity, model.ActionRemoveBackground, func(ctx context.Context) (*outcome, error) {
		id := uuid.NewString()

		original, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open upload: %w", err)
		}
		defer original.Close()

		originalKey := fmt.Sprintf("originals/%s/%s%s", identity.UserID, id, mtype.Extension())
		if err := d.storage.Put(ctx, originalKey, original, size, mtype.String()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
		}

		if _, err := original.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind upload: %w", err)
		}
		filename := in.Filename
		if filename == "" {
			filename = id + mtype.Extension()
		}
		processed, err := d.remover.RemoveBackground(ctx, original, filepath.Base(filename))
		if err != nil {
			return nil, providerError(err)
		}

		processedKey := fmt.Sprintf("processed/%s/%s.png", identity.UserID, id)
		if err := d.storage.Put(ctx, processedKey, bytes.NewReader(processed.Data), int64(len(processed.Data)), "image/png"); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
		}
		url, err := d.storage.PresignedURL(ctx, processedKey, d.config.SignedURLExpiry)
		if err != nil {
			d.discard(ctx, processedKey)
			return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
		}
		return &outcome{result: url}, nil
	})
}

// stage copies the upload to a temporary file and returns its path and size.
func (d *Domain) stage(src io.Reader) (string, int64, error) {
	dir := d.config.UploadDir
	if dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return "", 0, fmt.Errorf("create upload dir: %w", err)
		}
	}

	f, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	defer f.Close()

	limit := d.config.MaxUploadBytes
	if limit <= 0 {
		limit = DefaultConfig().MaxUploadBytes
	}
	n, err := io.Copy(f, io.LimitReader(src, limit+1))
	if err != nil {
		return f.Name(), 0, fmt.Errorf("write temp file: %w", err)
	}
	if n == 0 {
		return f.Name(), 0, ErrImageRequired
	}
	if n > limit {
		return f.Name(), 0, ErrUploadTooLarge
	}
	return f.Name(), n, nil
}

// discard removes an object whose URL could not be produced.
func (d *Domain) discard(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := d.storage.Delete(ctx, key); err != nil {
		d.logger.Warn("Failed to delete orphaned object", zap.String("key", key), zap.Error(err))
	}
}

// providerError classifies a guarded provider failure.
func providerError(err error) error {
	switch {
	case errors.Is(err, outbound.ErrInputRejected):
		return fmt.Errorf("%w: %v", ErrInputRejected, err)
	case errors.Is(err, resilience.ErrTimeout):
		return fmt.Errorf("%w: %v", ErrProviderTimeout, err)
	case errors.Is(err, resilience.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
}

// Compile-time check
var _ inbound.GenerationDomain = (*Domain)(nil)
