package service

import (
	"context"
	"errors"

	"github.com/AlShabiliBadia/Shorter-links/internal/apperrors"
	"github.com/AlShabiliBadia/Shorter-links/internal/dto"
	"github.com/AlShabiliBadia/Shorter-links/internal/model"
	"github.com/AlShabiliBadia/Shorter-links/internal/repository"
	"github.com/AlShabiliBadia/Shorter-links/pkg/utils"
	"github.com/AlShabiliBadia/Shorter-links/response"
	"go.uber.org/zap"
)

// MaxCreateAttempts bounds how many codes CreateLink tries before giving up.
const MaxCreateAttempts = 5

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// LinkCache holds the immutable {id, target_url} of links by short code. Implementations
// swallow their own failures; a miss is always safe.
type LinkCache interface {
	Get(ctx context.Context, code string) (repository.CachedLink, bool)
	Set(ctx context.Context, code string, link repository.CachedLink)
	Delete(ctx context.Context, code string)
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (repository.CachedLink, bool) {
	return repository.CachedLink{}, false
}
func (noopCache) Set(context.Context, string, repository.CachedLink) {}
func (noopCache) Delete(context.Context, string)                     {}

type LinkService struct {
	store    repository.Store
	cache    LinkCache
	generate CodeGenerator
	logger   *zap.Logger
}

type LinkOption func(*LinkService)

// WithLinkCache puts cache in front of redirect lookups.
func WithLinkCache(cache LinkCache) LinkOption {
	return func(s *LinkService) {
		if cache != nil {
			s.cache = cache
		}
	}
}

// WithCodeGenerator replaces GenerateShortCode.
func WithCodeGenerator(gen CodeGenerator) LinkOption {
	return func(s *LinkService) {
		if gen != nil {
			s.generate = gen
		}
	}
}

func NewLinkService(store repository.Store, logger *zap.Logger, opts ...LinkOption) *LinkService {
	s := &LinkService{
		store:    store,
		cache:    noopCache{},
		generate: GenerateShortCode,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func linkNotFound() *apperrors.AppError {
	return apperrors.NotFoundError("error.link_not_found", "Link not found!")
}

var targetURLMessages = map[error]string{
	utils.ErrTargetURLRequired:  "Target URL is required",
	utils.ErrTargetURLInvalid:   "Target URL must be an absolute http or https URL",
	utils.ErrTargetURLMaxLength: "Target URL must be at most 2048 characters",
}

func targetURLError(err error) *apperrors.AppError {
	msg, ok := targetURLMessages[err]
	if !ok {
		msg = "Invalid target URL"
	}
	return apperrors.ValidationError(err.Error(), msg)
}

// CreateLink stores a new link for targetURL. Each attempt inserts a fresh random code in its
// own transaction; a unique violation on the code means another link holds it and the next
// attempt draws again.
func (s *LinkService) CreateLink(ctx context.Context, targetURL string, owner model.Principal) (*model.ShortLink, error) {
	if err := utils.ValidateTargetURL(targetURL); err != nil {
		return nil, targetURLError(err)
	}

	for attempt := 1; attempt <= MaxCreateAttempts; attempt++ {
		code, err := s.generate()
		if err != nil {
			s.logger.Error("Failed to generate short code", zap.Error(err))
			return nil, apperrors.SystemErrorDefault().Wrap(err)
		}

		link := model.NewShortLink(code, targetURL, owner)
		err = s.store.Transaction(ctx, func(tx repository.Store) error {
			return tx.Links().Create(ctx, link)
		})
		if err == nil {
			s.cache.Delete(ctx, code)
			return link, nil
		}

		if errors.Is(err, repository.ErrDuplicateKey) {
			s.logger.Warn("Short code collision",
				zap.String("short_code", code),
				zap.Int("attempt", attempt))
			continue
		}

		s.logger.Error("Failed to create link",
			zap.Int("attempt", attempt),
			zap.Error(err))
		return nil, apperrors.SystemErrorDefault().Wrap(err)
	}

	s.logger.Error("Short code attempts exhausted", zap.Int("attempts", MaxCreateAttempts))
	return nil, apperrors.ExhaustedRetriesError()
}

// ResolveAndCount returns the target of code and counts one click. The click is committed
// before the target is returned.
func (s *LinkService) ResolveAndCount(ctx context.Context, code string) (string, error) {
	if err := utils.ValidateShortCode(code); err != nil {
		return "", linkNotFound()
	}

	if cached, ok := s.cache.Get(ctx, code); ok {
		err := s.store.Transaction(ctx, func(tx repository.Store) error {
			return tx.Links().IncrementClicks(ctx, cached.ID)
		})
		switch {
		case err == nil:
			return cached.TargetURL, nil
		case errors.Is(err, repository.ErrNotFound):
			// stale entry; the database decides below
			s.cache.Delete(ctx, code)
		default:
			s.logger.Error("Failed to count click",
				zap.String("short_code", code),
				zap.Error(err))
			return "", apperrors.SystemErrorDefault().Wrap(err)
		}
	}

	var link *model.ShortLink
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		found, err := tx.Links().FindByCode(ctx, code, true)
		if err != nil {
			return err
		}
		if err := tx.Links().IncrementClicks(ctx, found.ID); err != nil {
			return err
		}
		found.Clicks++
		link = found
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", linkNotFound()
		}
		s.logger.Error("Failed to resolve link",
			zap.String("short_code", code),
			zap.Error(err))
		return "", apperrors.SystemErrorDefault().Wrap(err)
	}

	s.cache.Set(ctx, code, repository.CachedLink{ID: link.ID, TargetURL: link.TargetURL})
	return link.TargetURL, nil
}

// GetStats returns the click statistics of code to its owner.
func (s *LinkService) GetStats(ctx context.Context, code string, viewer model.Principal) (*dto.LinkStats, error) {
	if err := utils.ValidateShortCode(code); err != nil {
		return nil, linkNotFound()
	}

	link, err := s.store.Links().FindByCode(ctx, code, false)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, linkNotFound()
		}
		s.logger.Error("Failed to load link",
			zap.String("short_code", code),
			zap.Error(err))
		return nil, apperrors.SystemErrorDefault().Wrap(err)
	}

	if viewer.IsAnonymous() {
		return nil, apperrors.UnauthenticatedError()
	}
	// anonymous links have no owner, so nobody passes this check for them
	if !link.OwnedBy().Is(viewer) {
		return nil, apperrors.ForbiddenError("error.stats_forbidden",
			"You do not have permission to view stats for this link.")
	}

	stats := dto.NewLinkStats(link)
	return &stats, nil
}

// ListOwnedLinks pages through the links of viewer, newest first.
func (s *LinkService) ListOwnedLinks(ctx context.Context, viewer model.Principal, page, size int) (*response.PageResponse[model.ShortLink], error) {
	ownerID, ok := viewer.UserID()
	if !ok {
		return nil, apperrors.UnauthenticatedError()
	}

	if page < 1 {
		page = 1
	}
	if size < 1 || size > MaxPageSize {
		size = DefaultPageSize
	}

	links, total, err := s.store.Links().ListByOwner(ctx, ownerID, (page-1)*size, size)
	if err != nil {
		s.logger.Error("Failed to list links",
			zap.Uint("owner_id", ownerID),
			zap.Error(err))
		return nil, apperrors.SystemErrorDefault().Wrap(err)
	}

	return response.NewPage(links, page, size, total), nil
}
