package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/AlShabiliBadia/Shorter-links/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LinkRepository interface {
	// Create inserts link and fills its id and timestamp. A taken short code yields ErrDuplicateKey.
	Create(ctx context.Context, link *model.ShortLink) error
	// FindByCode looks a link up by short code, optionally locking the row until the
	// surrounding transaction ends.
	FindByCode(ctx context.Context, code string, forUpdate bool) (*model.ShortLink, error)
	// IncrementClicks adds one click atomically. ErrNotFound when no row has that id.
	IncrementClicks(ctx context.Context, id uint) error
	ListByOwner(ctx context.Context, ownerID uint, offset, limit int) ([]model.ShortLink, int64, error)
	// ClearOwner turns every link of ownerID into an anonymous link.
	ClearOwner(ctx context.Context, ownerID uint) (int64, error)
	Totals(ctx context.Context) (links int64, clicks int64, err error)
}

type GormLinkRepository struct {
	db      *gorm.DB
	metrics *Metrics
}

func (r *GormLinkRepository) Create(ctx context.Context, link *model.ShortLink) (err error) {
	defer func(start time.Time) { r.metrics.observe("CreateLink", start, err) }(time.Now())

	if err = translate(r.db.WithContext(ctx).Create(link).Error); err != nil {
		return fmt.Errorf("create link: %w", err)
	}
	return nil
}

func (r *GormLinkRepository) FindByCode(ctx context.Context, code string, forUpdate bool) (_ *model.ShortLink, err error) {
	defer func(start time.Time) { r.metrics.observe("FindLinkByCode", start, err) }(time.Now())

	q := r.db.WithContext(ctx)
	if forUpdate && supportsRowLocks(q) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var link model.ShortLink
	if err = translate(q.Where("short_code = ?", code).Take(&link).Error); err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *GormLinkRepository) IncrementClicks(ctx context.Context, id uint) (err error) {
	defer func(start time.Time) { r.metrics.observe("IncrementClicks", start, err) }(time.Now())

	result := r.db.WithContext(ctx).
		Model(&model.ShortLink{}).
		Where("id = ?", id).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", 1))
	if result.Error != nil {
		err = fmt.Errorf("increment clicks for link %d: %w", id, translate(result.Error))
		return err
	}
	if result.RowsAffected == 0 {
		err = ErrNotFound
		return err
	}
	return nil
}

func (r *GormLinkRepository) ListByOwner(ctx context.Context, ownerID uint, offset, limit int) (_ []model.ShortLink, _ int64, err error) {
	defer func(start time.Time) { r.metrics.observe("ListLinksByOwner", start, err) }(time.Now())

	q := r.db.WithContext(ctx).Model(&model.ShortLink{}).Where("owner_id = ?", ownerID)

	var total int64
	if err = q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count links: %w", err)
	}
	if total == 0 {
		return []model.ShortLink{}, 0, nil
	}

	var links []model.ShortLink
	if err = q.Order("id DESC").Limit(limit).Offset(offset).Find(&links).Error; err != nil {
		return nil, 0, fmt.Errorf("list links: %w", err)
	}
	return links, total, nil
}

func (r *GormLinkRepository) ClearOwner(ctx context.Context, ownerID uint) (_ int64, err error) {
	defer func(start time.Time) { r.metrics.observe("ClearLinkOwner", start, err) }(time.Now())

	result := r.db.WithContext(ctx).
		Model(&model.ShortLink{}).
		Where("owner_id = ?", ownerID).
		UpdateColumn("owner_id", nil)
	if result.Error != nil {
		err = fmt.Errorf("clear owner %d: %w", ownerID, result.Error)
		return 0, err
	}
	return result.RowsAffected, nil
}

func (r *GormLinkRepository) Totals(ctx context.Context) (links int64, clicks int64, err error) {
	defer func(start time.Time) { r.metrics.observe("LinkTotals", start, err) }(time.Now())

	var row struct {
		Links  int64
		Clicks int64
	}
	err = r.db.WithContext(ctx).
		Model(&model.ShortLink{}).
		Select("COUNT(*) AS links, COALESCE(SUM(clicks), 0) AS clicks").
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("link totals: %w", err)
	}
	return row.Links, row.Clicks, nil
}
