package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"food-order/logger"
	"food-order/models"
	"food-order/repositories"
	"food-order/utils"

	"golang.org/x/sync/singleflight"
)

// CatalogSource is where stores, menus and categories come from.
type CatalogSource interface {
	GetAllStores(ctx context.Context) ([]models.Store, error)
	GetAllCategories(ctx context.Context) ([]models.Category, error)
}

const (
	catalogCacheTTL   = 5 * time.Minute
	maxRecentSearches = 10
)

type catalogSnapshot struct {
	Stores     []models.Store    `json:"stores"`
	Categories []models.Category `json:"categories"`
}

type StoreService struct {
	source CatalogSource
	cache  repositories.KeyValueStore
	group  singleflight.Group
	log    *logger.Logger

	searchMu sync.Mutex
}

func NewStoreService(source CatalogSource, cache repositories.KeyValueStore, log *logger.Logger) *StoreService {
	if log == nil {
		log = logger.Nop()
	}
	return &StoreService{source: source, cache: cache, log: log}
}

func (s *StoreService) catalog(ctx context.Context) (*catalogSnapshot, error) {
	var cached catalogSnapshot
	err := repositories.GetJSON(ctx, s.cache, repositories.KeyStoreCatalog, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, repositories.ErrKeyNotFound) {
		s.log.Warn(ctx, "catalog cache read failed", err)
	}

	v, err, _ := s.group.Do(repositories.KeyStoreCatalog, func() (interface{}, error) {
		// Shared by every waiting caller, so it must outlive the first one.
		ctx := context.WithoutCancel(ctx)
		stores, err := s.source.GetAllStores(ctx)
		if err != nil {
			return nil, err
		}
		categories, err := s.source.GetAllCategories(ctx)
		if err != nil {
			return nil, err
		}

		snapshot := &catalogSnapshot{Stores: stores, Categories: categories}
		if err := repositories.SetJSON(ctx, s.cache, repositories.KeyStoreCatalog, snapshot, catalogCacheTTL); err != nil {
			s.log.Warn(ctx, "catalog cache write failed", err)
		}
		return snapshot, nil
	})
	if err != nil {
		return nil, models.WrapAppError(models.CodeDependency, err, "failed to load store catalog")
	}
	return v.(*catalogSnapshot), nil
}

func (s *StoreService) Categories(ctx context.Context) ([]models.Category, error) {
	snapshot, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Categories, nil
}

// ListStores filters by free text and category and, given an origin,
// annotates and sorts by distance.
func (s *StoreService) ListStores(ctx context.Context, query models.StoreQuery) ([]models.StoreListing, error) {
	sortBy := strings.ToLower(strings.TrimSpace(query.SortBy))
	switch sortBy {
	case "":
		if query.Origin != nil {
			sortBy = models.SortByDistance
		}
	case models.SortByDistance, models.SortByRating:
	default:
		return nil, models.ValidationError("sort must be one of: distance, rating")
	}

	snapshot, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(query.Search))
	if search != "" {
		if err := s.recordSearch(ctx, strings.TrimSpace(query.Search)); err != nil {
			s.log.Warn(ctx, "failed to record recent search", err)
		}
	}

	categoryName := ""
	if query.CategoryID != "" {
		for _, c := range snapshot.Categories {
			if c.ID == query.CategoryID {
				categoryName = strings.ToLower(c.Name)
				break
			}
		}
	}

	listings := []models.StoreListing{}
	for _, store := range snapshot.Stores {
		if search != "" && !matchesSearch(store, search) {
			continue
		}
		if categoryName != "" && !matchesCategory(store, categoryName) {
			continue
		}
		listings = append(listings, toListing(store, query.Origin))
	}

	switch sortBy {
	case models.SortByDistance:
		if query.Origin != nil {
			sort.SliceStable(listings, func(i, j int) bool {
				return *listings[i].DistanceKm < *listings[j].DistanceKm
			})
		}
	case models.SortByRating:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].Rating > listings[j].Rating
		})
	}

	return listings, nil
}

func matchesSearch(store models.Store, search string) bool {
	if strings.Contains(strings.ToLower(store.Name), search) ||
		strings.Contains(strings.ToLower(store.Description), search) {
		return true
	}
	for _, item := range store.Items {
		if strings.Contains(strings.ToLower(item.Name), search) {
			return true
		}
	}
	return false
}

func matchesCategory(store models.Store, category string) bool {
	return strings.Contains(strings.ToLower(store.Name), category) ||
		strings.Contains(strings.ToLower(store.Description), category)
}

func toListing(store models.Store, origin *models.Coordinate) models.StoreListing {
	listing := models.StoreListing{Store: store}
	if origin != nil {
		km := utils.Distance(*origin, store.Coordinate)
		listing.DistanceKm = &km
		listing.FormattedDistance = utils.FormatDistance(km)
	}
	return listing
}

func (s *StoreService) GetStore(ctx context.Context, id string, origin *models.Coordinate) (*models.StoreListing, error) {
	snapshot, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	for _, store := range snapshot.Stores {
		if store.ID == id {
			listing := toListing(store, origin)
			return &listing, nil
		}
	}
	return nil, models.NotFoundError("store not found")
}

// GetMenuItem resolves an item on a store's menu so the cart can snapshot
// its current price.
func (s *StoreService) GetMenuItem(ctx context.Context, storeID, itemID string) (*models.Store, *models.CatalogItem, error) {
	snapshot, err := s.catalog(ctx)
	if err != nil {
		return nil, nil, err
	}
	for i := range snapshot.Stores {
		store := &snapshot.Stores[i]
		if store.ID != storeID {
			continue
		}
		for j := range store.Items {
			if store.Items[j].ID == itemID {
				return store, &store.Items[j], nil
			}
		}
		return nil, nil, models.NotFoundError("menu item not found")
	}
	return nil, nil, models.NotFoundError("store not found")
}

// RecentSearches returns the newest-first search history.
func (s *StoreService) RecentSearches(ctx context.Context) ([]string, error) {
	var searches []string
	err := repositories.GetJSON(ctx, s.cache, repositories.KeyRecentSearches, &searches)
	if errors.Is(err, repositories.ErrKeyNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, models.PersistenceError(err, "failed to load recent searches")
	}
	return searches, nil
}

func (s *StoreService) ClearRecentSearches(ctx context.Context) error {
	if err := s.cache.Remove(ctx, repositories.KeyRecentSearches); err != nil {
		return models.PersistenceError(err, "failed to clear recent searches")
	}
	return nil
}

func (s *StoreService) recordSearch(ctx context.Context, term string) error {
	s.searchMu.Lock()
	defer s.searchMu.Unlock()

	var searches []string
	err := repositories.GetJSON(ctx, s.cache, repositories.KeyRecentSearches, &searches)
	if err != nil && !errors.Is(err, repositories.ErrKeyNotFound) {
		searches = nil
	}

	updated := []string{term}
	for _, existing := range searches {
		if strings.EqualFold(existing, term) {
			continue
		}
		updated = append(updated, existing)
		if len(updated) == maxRecentSearches {
			break
		}
	}

	return repositories.SetJSON(ctx, s.cache, repositories.KeyRecentSearches, updated, 0)
}
