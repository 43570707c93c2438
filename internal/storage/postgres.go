package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"menupricing/internal/catalog"
	"menupricing/internal/config"
)

var ErrItemNotFound = catalog.ErrItemNotFound

// Cache is the byte cache in front of Postgres. A miss is any error from Get.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type PostgresStorage struct {
	db       *sqlx.DB
	cache    Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewPostgresStorage(ctx context.Context, cfg config.Database, cache Cache, cacheTTL time.Duration, logger *zap.Logger) (*PostgresStorage, error) {
	const operation = "storage.NewPostgresStorage"

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
	)

	var db *sqlx.DB
	var err error

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...")

	err = backoff.RetryNotify(
		func() error {
			db, err = sqlx.ConnectContext(ctx, "postgres", connStr)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}

			if err = db.PingContext(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)

	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	return New(db, cache, cacheTTL, logger), nil
}

// New wraps an open database. cache may be nil.
func New(db *sqlx.DB, cache Cache, cacheTTL time.Duration, logger *zap.Logger) *PostgresStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStorage{
		db:       db,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func (s *PostgresStorage) DB() *sql.DB {
	return s.db.DB
}

type itemRow struct {
	ID             string               `db:"id"`
	RestaurantID   string               `db:"restaurant_id"`
	ParentID       string               `db:"parent_id"`
	Name           string               `db:"name"`
	Category       string               `db:"category"`
	Price          float64              `db:"price"`
	IsLimitedOffer bool                 `db:"is_limited_offer"`
	OfferStartAt   *time.Time           `db:"offer_start_at"`
	OfferEndAt     *time.Time           `db:"offer_end_at"`
	OfferTypes     pq.StringArray       `db:"offer_types"`
	DrinkIDs       pq.StringArray       `db:"drink_ids"`
	DrinkQuantity  int                  `db:"drink_quantity"`
	OfferDetails   catalog.OfferDetails `db:"offer_details"`
}

type supplementRow struct {
	Name        string         `db:"name"`
	Price       float64        `db:"price"`
	IsAvailable bool           `db:"is_available"`
	VariantIDs  pq.StringArray `db:"variant_ids"`
}

const (
	selectItem = `
        SELECT id, restaurant_id, parent_id, name, category, price, is_limited_offer,
               offer_start_at, offer_end_at, offer_types, drink_ids, drink_quantity, offer_details
        FROM menu_items
        WHERE id = $1
    `
	selectOptions = `
        SELECT id, owner_id, size, price, is_default, offer_details
        FROM pricing_options
        WHERE item_id = $1
        ORDER BY position, id
    `
	selectVariants = `
        SELECT id, item_id, name, description
        FROM menu_item_variants
        WHERE item_id = $1
        ORDER BY position, id
    `
	selectSupplements = `
        SELECT name, price, is_available, variant_ids
        FROM supplements
        WHERE item_id = $1
        ORDER BY position, id
    `
)

// GetItem loads the full item graph, reading through the cache.
func (s *PostgresStorage) GetItem(ctx context.Context, id string) (*catalog.Item, error) {
	const operation = "storage.GetItem"

	cacheKey := itemCacheKey(id)

	// Try the cache first
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			var item catalog.Item
			if err := json.Unmarshal(cached, &item); err == nil {
				return &item, nil
			}
			s.logger.Warn("Dropping undecodable cached item", zap.String("item_id", id))
		}
	}

	// Fall back to Postgres
	var row itemRow
	if err := s.db.GetContext(ctx, &row, selectItem, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %s: %w", operation, id, ErrItemNotFound)
		}
		return nil, fmt.Errorf("%s: failed to get item: %w", operation, err)
	}

	item := &catalog.Item{
		ID:             row.ID,
		RestaurantID:   row.RestaurantID,
		ParentID:       row.ParentID,
		Name:           row.Name,
		Category:       row.Category,
		Price:          row.Price,
		IsLimitedOffer: row.IsLimitedOffer,
		OfferStartAt:   row.OfferStartAt,
		OfferEndAt:     row.OfferEndAt,
		OfferTypes:     []string(row.OfferTypes),
		DrinkIDs:       []string(row.DrinkIDs),
		DrinkQuantity:  row.DrinkQuantity,
		OfferDetails:   row.OfferDetails,
	}

	if err := s.db.SelectContext(ctx, &item.PricingOptions, selectOptions, id); err != nil {
		return nil, fmt.Errorf("%s: failed to get pricing options: %w", operation, err)
	}
	if err := s.db.SelectContext(ctx, &item.Variants, selectVariants, id); err != nil {
		return nil, fmt.Errorf("%s: failed to get variants: %w", operation, err)
	}

	var supplements []supplementRow
	if err := s.db.SelectContext(ctx, &supplements, selectSupplements, id); err != nil {
		return nil, fmt.Errorf("%s: failed to get supplements: %w", operation, err)
	}
	for _, sup := range supplements {
		item.Supplements = append(item.Supplements, catalog.Supplement{
			Name:        sup.Name,
			Price:       sup.Price,
			IsAvailable: sup.IsAvailable,
			VariantIDs:  []string(sup.VariantIDs),
		})
	}

	// Cache the result
	if s.cache != nil {
		if data, err := json.Marshal(item); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, s.cacheTTL); err != nil {
				s.logger.Warn("Failed to cache item", zap.String("item_id", id), zap.Error(err))
			}
		}
	}

	return item, nil
}

// InvalidateItem drops the cached copy so the next GetItem reloads the whole graph.
func (s *PostgresStorage) InvalidateItem(ctx context.Context, id string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, itemCacheKey(id))
}

func (s *PostgresStorage) ListItemIDs(ctx context.Context) ([]string, error) {
	const query = `SELECT id FROM menu_items ORDER BY restaurant_id, name, id`

	var ids []string
	if err := s.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return ids, nil
}

func (s *PostgresStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func itemCacheKey(id string) string {
	return fmt.Sprintf("catalog:item:%s", id)
}
