package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/emporia-shop/emporia-backend/internal/models"
)

var ErrItemNotFound = errors.New("item not found")

// CatalogStore persists items and categories in PostgreSQL.
type CatalogStore struct {
	db *sql.DB
}

func NewCatalogStore(db *sql.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

const itemColumns = `id, title, COALESCE(body, ''), item_date, COALESCE(feature_image, ''), published, price, category_id`

func scanItem(row interface{ Scan(...interface{}) error }) (models.Item, error) {
	var item models.Item
	var categoryID uuid.NullUUID
	err := row.Scan(&item.ID, &item.Title, &item.Body, &item.ItemDate,
		&item.FeatureImage, &item.Published, &item.Price, &categoryID)
	if err != nil {
		return item, err
	}
	if categoryID.Valid {
		item.CategoryID = &categoryID.UUID
	}
	return item, nil
}

func (s *CatalogStore) queryItems(ctx context.Context, query string, args ...interface{}) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *CatalogStore) GetAllItems(ctx context.Context) ([]models.Item, error) {
	return s.queryItems(ctx, `SELECT `+itemColumns+` FROM items ORDER BY item_date DESC`)
}

// GetPublishedItems returns published items newest first, with the category
// name joined ("Uncategorized" when the item has none).
func (s *CatalogStore) GetPublishedItems(ctx context.Context) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.title, COALESCE(i.body, ''), i.item_date, COALESCE(i.feature_image, ''),
			i.published, i.price, i.category_id, COALESCE(c.category, 'Uncategorized')
		FROM items i
		LEFT JOIN categories c ON c.id = i.category_id
		WHERE i.published = TRUE
		ORDER BY i.item_date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		var item models.Item
		var categoryID uuid.NullUUID
		if err := rows.Scan(&item.ID, &item.Title, &item.Body, &item.ItemDate,
			&item.FeatureImage, &item.Published, &item.Price, &categoryID, &item.CategoryName); err != nil {
			return nil, err
		}
		if categoryID.Valid {
			item.CategoryID = &categoryID.UUID
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *CatalogStore) GetPublishedItemsByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Item, error) {
	return s.queryItems(ctx,
		`SELECT `+itemColumns+` FROM items WHERE published = TRUE AND category_id = $1 ORDER BY item_date DESC`,
		categoryID)
}

func (s *CatalogStore) GetItemsByMinDate(ctx context.Context, minDate time.Time) ([]models.Item, error) {
	return s.queryItems(ctx,
		`SELECT `+itemColumns+` FROM items WHERE item_date >= $1 ORDER BY item_date DESC`,
		minDate)
}

func (s *CatalogStore) GetItemByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// AddItem inserts a new item, stamping its ID and item date.
func (s *CatalogStore) AddItem(ctx context.Context, item *models.Item) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.ItemDate.IsZero() {
		item.ItemDate = time.Now()
	}

	var categoryID uuid.NullUUID
	if item.CategoryID != nil {
		categoryID = uuid.NullUUID{UUID: *item.CategoryID, Valid: true}
	}
	var featureImage sql.NullString
	if item.FeatureImage != "" {
		featureImage = sql.NullString{String: item.FeatureImage, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, title, body, item_date, feature_image, published, price, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, item.ID, item.Title, item.Body, item.ItemDate, featureImage, item.Published, item.Price, categoryID)
	return err
}

func (s *CatalogStore) DeleteItemByID(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *CatalogStore) GetCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, category FROM categories ORDER BY category ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Category); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *CatalogStore) AddCategory(ctx context.Context, category *models.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, category) VALUES ($1, $2)`,
		category.ID, category.Category)
	return err
}

// DeleteCategoryByID removes a category; items keep their rows with the
// category reference nulled by the FK.
func (s *CatalogStore) DeleteCategoryByID(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return err
}
