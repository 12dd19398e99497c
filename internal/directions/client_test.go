package directions

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	searches   int
	routeCode  string
	routeHTTP  int
	searchHTTP int
	noMatch    bool
	lastRoute  string
}

func (f *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/search":
		f.searches++
		if f.searchHTTP != 0 {
			w.WriteHeader(f.searchHTTP)
			return
		}
		if f.noMatch {
			fmt.Fprint(w, `[]`)
			return
		}
		if strings.Contains(r.URL.Query().Get("q"), "Station") {
			fmt.Fprint(w, `[{"lat":"24.8016","lon":"120.9716"}]`)
			return
		}
		fmt.Fprint(w, `[{"lat":"24.8138","lon":"120.9675"}]`)
	case strings.HasPrefix(r.URL.Path, "/route/v1/foot/"):
		f.lastRoute = r.URL.Path
		if f.routeHTTP != 0 {
			w.WriteHeader(f.routeHTTP)
			return
		}
		code := f.routeCode
		if code == "" {
			code = "Ok"
		}
		if code != "Ok" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, `{"code":%q,"message":"nope"}`, code)
			return
		}
		fmt.Fprint(w, `{"code":"Ok","routes":[{"distance":1500,"duration":1200},{"distance":1800,"duration":1300}]}`)
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, f *fakeProvider) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.URL+"/", 5*time.Second)
}

func TestRoute_GeocodesAndRoutes(t *testing.T) {
	f := &fakeProvider{}
	client := newTestClient(t, f)

	route, err := client.Route(context.Background(), "City Hall, Hsinchu", "Hsinchu Station")
	require.NoError(t, err)

	assert.InDelta(t, 1.5, route.DistanceKm, 1e-9)
	assert.InDelta(t, 20.0, route.DurationMinutes, 1e-9)
	assert.Equal(t, 2, f.searches)
	assert.Equal(t, "/route/v1/foot/120.967500,24.813800;120.971600,24.801600", f.lastRoute)
}

func TestRoute_CoordinatesSkipGeocoding(t *testing.T) {
	f := &fakeProvider{}
	client := newTestClient(t, f)

	_, err := client.Route(context.Background(), "24.8138, 120.9675", "24.8016,120.9716")
	require.NoError(t, err)
	assert.Zero(t, f.searches)
}

func TestRoute_CategorizedFailures(t *testing.T) {
	tests := []struct {
		name     string
		provider *fakeProvider
		want     Status
		message  string
	}{
		{"unknown place", &fakeProvider{noMatch: true}, StatusNotFound, "could not be found"},
		{"no route", &fakeProvider{routeCode: "NoRoute"}, StatusZeroResults, "No walking route"},
		{"too big", &fakeProvider{routeCode: "TooBig"}, StatusMaxWaypointsExceeded, "Too many waypoints"},
		{"invalid query", &fakeProvider{routeCode: "InvalidQuery"}, StatusInvalidRequest, "Invalid request"},
		{"rate limited", &fakeProvider{routeHTTP: http.StatusTooManyRequests}, StatusOverQueryLimit, "Query limit exceeded"},
		{"denied", &fakeProvider{searchHTTP: http.StatusForbidden}, StatusRequestDenied, "Request denied"},
		{"server error", &fakeProvider{routeHTTP: http.StatusBadGateway}, StatusUnknownError, "Server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.provider)

			_, err := client.Route(context.Background(), "Somewhere", "Elsewhere")
			require.Error(t, err)
			assert.Equal(t, tt.want, StatusOf(err))
			assert.Contains(t, err.Error(), tt.message)
			assert.True(t, strings.HasPrefix(err.Error(), "Could not calculate route: "))
		})
	}
}

func TestRoute_UnreachableProvider(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "http://127.0.0.1:1", time.Second)

	_, err := client.Route(context.Background(), "24.8,120.9", "24.9,120.9")
	assert.Equal(t, StatusUnknownError, StatusOf(err))
}

func TestParseCoordinate(t *testing.T) {
	c, ok := parseCoordinate("24.8138,120.9675")
	require.True(t, ok)
	assert.Equal(t, 24.8138, c.Lat)
	assert.Equal(t, 120.9675, c.Lng)

	for _, s := range []string{"Hsinchu", "91,0", "0,181", "1,2,3", "a,b"} {
		_, ok := parseCoordinate(s)
		assert.False(t, ok, s)
	}
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, Status(""), StatusOf(fmt.Errorf("plain")))
	wrapped := fmt.Errorf("plan: %w", newError(StatusZeroResults, nil))
	assert.Equal(t, StatusZeroResults, StatusOf(wrapped))
}
