package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"food-order/models"
	"food-order/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCatalog struct {
	*repositories.StaticCatalog
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (c *countingCatalog) GetAllStores(ctx context.Context) ([]models.Store, error) {
	c.calls.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.StaticCatalog.GetAllStores(ctx)
}

func newStoreService() (*StoreService, *countingCatalog, *repositories.MemoryStore) {
	source := &countingCatalog{StaticCatalog: repositories.NewStaticCatalog()}
	cache := repositories.NewMemoryStore()
	return NewStoreService(source, cache, nil), source, cache
}

func storeIDs(listings []models.StoreListing) []string {
	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestListStoresNoFilters(t *testing.T) {
	svc, _, _ := newStoreService()

	listings, err := svc.ListStores(context.Background(), models.StoreQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, storeIDs(listings))
	assert.Nil(t, listings[0].DistanceKm)
}

func TestListStoresSearch(t *testing.T) {
	svc, _, _ := newStoreService()
	ctx := context.Background()

	byName, err := svc.ListStores(ctx, models.StoreQuery{Search: "SUSHI"})
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, storeIDs(byName))

	byItem, err := svc.ListStores(ctx, models.StoreQuery{Search: "naan"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, storeIDs(byItem))

	none, err := svc.ListStores(ctx, models.StoreQuery{Search: "zzz"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListStoresCategory(t *testing.T) {
	svc, _, _ := newStoreService()
	ctx := context.Background()

	pizza, err := svc.ListStores(ctx, models.StoreQuery{CategoryID: "1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, storeIDs(pizza))

	burgers, err := svc.ListStores(ctx, models.StoreQuery{CategoryID: "2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, storeIDs(burgers))

	unknown, err := svc.ListStores(ctx, models.StoreQuery{CategoryID: "99"})
	require.NoError(t, err)
	assert.Len(t, unknown, 5)
}

func TestListStoresDistanceSort(t *testing.T) {
	svc, _, _ := newStoreService()
	origin := &models.Coordinate{Latitude: 44.6388, Longitude: -63.5717}

	listings, err := svc.ListStores(context.Background(), models.StoreQuery{Origin: origin})
	require.NoError(t, err)
	require.Len(t, listings, 5)

	assert.Equal(t, "3", listings[0].ID)
	assert.Equal(t, "0 m", listings[0].FormattedDistance)
	for i := 1; i < len(listings); i++ {
		assert.LessOrEqual(t, *listings[i-1].DistanceKm, *listings[i].DistanceKm)
		assert.NotEmpty(t, listings[i].FormattedDistance)
	}
}

func TestListStoresRatingSort(t *testing.T) {
	svc, _, _ := newStoreService()
	origin := &models.Coordinate{Latitude: 44.6388, Longitude: -63.5717}

	listings, err := svc.ListStores(context.Background(), models.StoreQuery{Origin: origin, SortBy: "rating"})
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1", "5", "2", "4"}, storeIDs(listings))
	assert.NotNil(t, listings[0].DistanceKm)
}

func TestListStoresInvalidSort(t *testing.T) {
	svc, _, _ := newStoreService()

	_, err := svc.ListStores(context.Background(), models.StoreQuery{SortBy: "price"})
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestCatalogIsCached(t *testing.T) {
	svc, source, cache := newStoreService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.ListStores(ctx, models.StoreQuery{})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), source.calls.Load())

	require.NoError(t, cache.Remove(ctx, repositories.KeyStoreCatalog))
	_, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), source.calls.Load())
}

func TestCatalogConcurrentMissesCollapse(t *testing.T) {
	svc, source, _ := newStoreService()
	source.delay = 50 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ListStores(context.Background(), models.StoreQuery{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), source.calls.Load())
}

func TestCatalogLoadSurvivesFirstCallerCancel(t *testing.T) {
	svc, source, _ := newStoreService()
	source.delay = 100 * time.Millisecond

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.ListStores(first, models.StoreQuery{})
		firstErr <- err
	}()

	time.Sleep(20 * time.Millisecond)
	secondErr := make(chan error, 1)
	go func() {
		_, err := svc.ListStores(context.Background(), models.StoreQuery{})
		secondErr <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	assert.NoError(t, <-secondErr)
	assert.NoError(t, <-firstErr)
	assert.Equal(t, int32(1), source.calls.Load())
}

func TestCatalogSourceFailure(t *testing.T) {
	svc, source, _ := newStoreService()
	source.err = errors.New("db down")

	_, err := svc.ListStores(context.Background(), models.StoreQuery{})
	assert.True(t, models.HasCode(err, models.CodeDependency))
}

func TestGetStoreAndMenuItem(t *testing.T) {
	svc, _, _ := newStoreService()
	ctx := context.Background()

	store, err := svc.GetStore(ctx, "4", nil)
	require.NoError(t, err)
	assert.Equal(t, "Burger Joint", store.Name)
	assert.Len(t, store.Items, 3)

	_, err = svc.GetStore(ctx, "42", nil)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	owner, menuItem, err := svc.GetMenuItem(ctx, "1", "101")
	require.NoError(t, err)
	assert.Equal(t, "Taste of Italy", owner.Name)
	assert.Equal(t, "14.99", menuItem.Price.String())

	_, _, err = svc.GetMenuItem(ctx, "1", "201")
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestRecentSearches(t *testing.T) {
	svc, _, _ := newStoreService()
	ctx := context.Background()

	empty, err := svc.RecentSearches(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, term := range []string{"pizza", "sushi", "Pizza", "  ", "tacos"} {
		_, err := svc.ListStores(ctx, models.StoreQuery{Search: term})
		require.NoError(t, err)
	}

	searches, err := svc.RecentSearches(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tacos", "Pizza", "sushi"}, searches)

	require.NoError(t, svc.ClearRecentSearches(ctx))
	searches, err = svc.RecentSearches(ctx)
	require.NoError(t, err)
	assert.Empty(t, searches)
}

func TestRecentSearchesCapped(t *testing.T) {
	svc, _, _ := newStoreService()
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		_, err := svc.ListStores(ctx, models.StoreQuery{Search: fmt.Sprintf("term-%d", i)})
		require.NoError(t, err)
	}

	searches, err := svc.RecentSearches(ctx)
	require.NoError(t, err)
	assert.Len(t, searches, maxRecentSearches)
	assert.Equal(t, "term-14", searches[0])
	assert.Equal(t, "term-5", searches[9])
}
