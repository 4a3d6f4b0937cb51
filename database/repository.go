package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

const (
	DefaultLimit = 20
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit well inside the range of a 32-bit offset.
	MaxPage = 1_000_000
)

type options struct {
	scopes    []func(*gorm.DB) *gorm.DB
	immutable []string
}

type Option func(*options)

// WithScope restricts every read, update and delete of the repository.
func WithScope(scope func(*gorm.DB) *gorm.DB) Option {
	return func(o *options) { o.scopes = append(o.scopes, scope) }
}

// WithImmutable lists columns that Replace and Patch never write.
func WithImmutable(columns ...string) Option {
	return func(o *options) { o.immutable = append(o.immutable, columns...) }
}

// Repository is the CRUD store for one entity type.
type Repository[T any] struct {
	db   *gorm.DB
	opts options
}

func NewRepository[T any](db *gorm.DB, opts ...Option) *Repository[T] {
	r := &Repository[T]{db: db}
	for _, opt := range opts {
		opt(&r.opts)
	}
	return r
}

func (r *Repository[T]) tx(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Scopes(r.opts.scopes...)
}

// List returns one page of entities ordered by id, plus the total count.
func (r *Repository[T]) List(ctx context.Context, page, limit int) ([]T, int64, error) {
	page, limit = NormalizePage(page, limit)

	var total int64
	if err := r.tx(ctx).Model(new(T)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	items := make([]T, 0, limit)
	err := r.tx(ctx).
		Order("id asc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list: %w", err)
	}
	return items, total, nil
}

func (r *Repository[T]) Get(ctx context.Context, id uint) (*T, error) {
	var v T
	if err := r.tx(ctx).First(&v, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %d: %w", id, err)
	}
	return &v, nil
}

func (r *Repository[T]) Create(ctx context.Context, v *T) error {
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		return fmt.Errorf("create: %w", err)
	}
	return nil
}

// Replace overwrites every mutable column of entity id with v.
func (r *Repository[T]) Replace(ctx context.Context, id uint, v *T) (*T, error) {
	existing, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.update(ctx, id, existing, v)
}

// Patch loads entity id, lets apply modify a copy of it and writes the result.
func (r *Repository[T]) Patch(ctx context.Context, id uint, apply func(*T) error) (*T, error) {
	existing, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patched := *existing
	if err := apply(&patched); err != nil {
		return nil, err
	}
	return r.update(ctx, id, existing, &patched)
}

func (r *Repository[T]) update(ctx context.Context, id uint, existing, v *T) (*T, error) {
	omit := append([]string{"id", "created_at"}, r.opts.immutable...)
	err := r.db.WithContext(ctx).
		Model(existing).
		Select("*").
		Omit(omit...).
		Updates(v).Error
	if err != nil {
		return nil, fmt.Errorf("update %d: %w", id, err)
	}
	return r.Get(ctx, id)
}

func (r *Repository[T]) Delete(ctx context.Context, id uint) error {
	res := r.tx(ctx).Delete(new(T), id)
	if res.Error != nil {
		return fmt.Errorf("delete %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.tx(ctx).Model(new(T)).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// DeleteWhere removes rows matching the condition, ignoring repository scopes.
func (r *Repository[T]) DeleteWhere(ctx context.Context, query string, args ...any) (int64, error) {
	res := r.db.WithContext(ctx).Where(query, args...).Delete(new(T))
	if res.Error != nil {
		return 0, fmt.Errorf("delete where: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// NormalizePage applies defaults and the page and limit caps.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}
