package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/AlShabiliBadia/Shorter-links/internal/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	// Create inserts user. A taken email yields ErrDuplicateKey.
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uint) (*model.User, error)
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type GormUserRepository struct {
	db      *gorm.DB
	metrics *Metrics
}

func (r *GormUserRepository) Create(ctx context.Context, user *model.User) (err error) {
	defer func(start time.Time) { r.metrics.observe("CreateUser", start, err) }(time.Now())

	if err = translate(r.db.WithContext(ctx).Create(user).Error); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByEmail matches the email exactly; addresses are case-sensitive.
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (_ *model.User, err error) {
	defer func(start time.Time) { r.metrics.observe("FindUserByEmail", start, err) }(time.Now())

	var user model.User
	if err = translate(r.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (_ *model.User, err error) {
	defer func(start time.Time) { r.metrics.observe("FindUserByID", start, err) }(time.Now())

	var user model.User
	if err = translate(r.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) Delete(ctx context.Context, id uint) (err error) {
	defer func(start time.Time) { r.metrics.observe("DeleteUser", start, err) }(time.Now())

	result := r.db.WithContext(ctx).Delete(&model.User{}, id)
	if result.Error != nil {
		err = fmt.Errorf("delete user %d: %w", id, result.Error)
		return err
	}
	if result.RowsAffected == 0 {
		err = ErrNotFound
		return err
	}
	return nil
}

func (r *GormUserRepository) Count(ctx context.Context) (_ int64, err error) {
	defer func(start time.Time) { r.metrics.observe("CountUsers", start, err) }(time.Now())

	var total int64
	if err = r.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}
