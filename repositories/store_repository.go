package repositories

import (
	"context"
	"errors"
	"fmt"

	"food-order/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var ErrStoreNotFound = errors.New("store not found")

// StoreRepository reads the seeded, read-only catalog.
type StoreRepository struct {
	db DBTX
}

func NewStoreRepository(db DBTX) *StoreRepository {
	return &StoreRepository{db: db}
}

func (r *StoreRepository) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	query := `SELECT id, name, icon FROM categories ORDER BY position, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

// GetAllStores returns every store with its menu, in seed order.
func (r *StoreRepository) GetAllStores(ctx context.Context) ([]models.Store, error) {
	query := `
		SELECT id, name, description, address, image, rating, latitude, longitude
		FROM stores
		ORDER BY position, id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query stores: %w", err)
	}
	defer rows.Close()

	stores := []models.Store{}
	index := map[string]int{}
	for rows.Next() {
		var s models.Store
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Description, &s.Address, &s.Image, &s.Rating,
			&s.Coordinate.Latitude, &s.Coordinate.Longitude,
		); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		s.Items = []models.CatalogItem{}
		index[s.ID] = len(stores)
		stores = append(stores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := r.db.Query(ctx, `SELECT store_id, id, name, price::text, image FROM store_items ORDER BY store_id, position, id`)
	if err != nil {
		return nil, fmt.Errorf("query store items: %w", err)
	}
	defer items.Close()

	for items.Next() {
		var storeID string
		item, err := scanCatalogItem(items, &storeID)
		if err != nil {
			return nil, err
		}
		if i, ok := index[storeID]; ok {
			stores[i].Items = append(stores[i].Items, item)
		}
	}
	return stores, items.Err()
}

func (r *StoreRepository) GetStoreByID(ctx context.Context, id string) (*models.Store, error) {
	query := `
		SELECT id, name, description, address, image, rating, latitude, longitude
		FROM stores WHERE id = $1
	`

	var s models.Store
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Description, &s.Address, &s.Image, &s.Rating,
		&s.Coordinate.Latitude, &s.Coordinate.Longitude,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get store %s: %w", id, err)
	}

	rows, err := r.db.Query(ctx, `SELECT store_id, id, name, price::text, image FROM store_items WHERE store_id = $1 ORDER BY position, id`, id)
	if err != nil {
		return nil, fmt.Errorf("query items for store %s: %w", id, err)
	}
	defer rows.Close()

	s.Items = []models.CatalogItem{}
	for rows.Next() {
		var storeID string
		item, err := scanCatalogItem(rows, &storeID)
		if err != nil {
			return nil, err
		}
		s.Items = append(s.Items, item)
	}
	return &s, rows.Err()
}

func scanCatalogItem(rows pgx.Rows, storeID *string) (models.CatalogItem, error) {
	var (
		item  models.CatalogItem
		price string
	)
	if err := rows.Scan(storeID, &item.ID, &item.Name, &price, &item.Image); err != nil {
		return item, fmt.Errorf("scan store item: %w", err)
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return item, fmt.Errorf("parse price of item %s: %w", item.ID, err)
	}
	item.Price = parsed
	return item, nil
}
