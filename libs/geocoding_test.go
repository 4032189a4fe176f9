package libs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"food-order/models"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeocoder(t *testing.T, handler http.HandlerFunc) *GeocodingClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewGeocodingClient("test-key", WithGeocodingBaseURL(srv.URL), WithGeocodingHTTPClient(srv.Client()))
	require.NoError(t, err)
	return client
}

func TestGeocode(t *testing.T) {
	client := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "123 Main St, Halifax", r.URL.Query().Get("address"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"123 Main St, Halifax, NS","geometry":{"location":{"lat":44.6488,"lng":-63.5752}}}]}`))
	})

	result, err := client.Geocode(context.Background(), " 123 Main St, Halifax ")
	require.NoError(t, err)
	assert.Equal(t, "123 Main St, Halifax, NS", result.FormattedAddress)
	assert.InDelta(t, 44.6488, result.Latitude, 1e-9)
	assert.InDelta(t, -63.5752, result.Longitude, 1e-9)
}

func TestReverseGeocode(t *testing.T) {
	client := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "44.6488,-63.5752", r.URL.Query().Get("latlng"))
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"123 Main St, Halifax, NS"}]}`))
	})

	address, err := client.ReverseGeocode(context.Background(), models.Coordinate{Latitude: 44.6488, Longitude: -63.5752})
	require.NoError(t, err)
	assert.Equal(t, "123 Main St, Halifax, NS", address)
}

func TestGeocodeNonOKStatusIsNotFound(t *testing.T) {
	for _, status := range []string{"ZERO_RESULTS", "REQUEST_DENIED"} {
		t.Run(status, func(t *testing.T) {
			client := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":"` + status + `","results":[]}`))
			})

			_, err := client.Geocode(context.Background(), "nowhere")
			assert.True(t, models.HasCode(err, models.CodeNotFound))
		})
	}
}

func TestGeocodeEmptyAddress(t *testing.T) {
	client := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("upstream must not be called")
	})

	_, err := client.Geocode(context.Background(), "  ")
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestGeocodeBreakerOpens(t *testing.T) {
	var hits atomic.Int32
	client := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < 5; i++ {
		_, err := client.Geocode(context.Background(), "somewhere")
		assert.True(t, models.HasCode(err, models.CodeDependency))
	}

	_, err := client.Geocode(context.Background(), "somewhere")
	assert.True(t, models.HasCode(err, models.CodeDependency))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(5), hits.Load())
}

func TestNewGeocodingClientRequiresKey(t *testing.T) {
	_, err := NewGeocodingClient(" ")
	assert.Error(t, err)
}
