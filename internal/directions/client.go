// internal/directions/client.go
package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sstent/walktime-go/internal/models"
)

const userAgent = "walktime/1.0"

// Provider plans a walking route between two free-form places.
type Provider interface {
	Route(ctx context.Context, origin, destination string) (models.Route, error)
}

// Client talks to an OSRM router (foot profile) and resolves addresses with
// a Nominatim geocoder. "lat,lng" inputs skip geocoding.
type Client struct {
	httpClient  *http.Client
	routerURL   string
	geocoderURL string
}

func NewClient(routerURL, geocoderURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		routerURL:   strings.TrimRight(routerURL, "/"),
		geocoderURL: strings.TrimRight(geocoderURL, "/"),
	}
}

type coordinate struct {
	Lat, Lng float64
}

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"` // meters
		Duration float64 `json:"duration"` // seconds
	} `json:"routes"`
}

// Route returns the first walking route between origin and destination.
func (c *Client) Route(ctx context.Context, origin, destination string) (models.Route, error) {
	from, err := c.resolve(ctx, origin)
	if err != nil {
		return models.Route{}, err
	}
	to, err := c.resolve(ctx, destination)
	if err != nil {
		return models.Route{}, err
	}

	endpoint := fmt.Sprintf("%s/route/v1/foot/%f,%f;%f,%f?overview=false&alternatives=true",
		c.routerURL, from.Lng, from.Lat, to.Lng, to.Lat)

	var data osrmResponse
	status, err := c.getJSON(ctx, endpoint, &data)
	if err != nil {
		return models.Route{}, err
	}
	if status != http.StatusOK && status != http.StatusBadRequest {
		return models.Route{}, newError(statusFromHTTP(status), fmt.Errorf("router returned status %d", status))
	}

	if data.Code != "Ok" {
		return models.Route{}, newError(statusFromOSRM(data.Code), fmt.Errorf("router code %s: %s", data.Code, data.Message))
	}
	if len(data.Routes) == 0 {
		return models.Route{}, newError(StatusZeroResults, nil)
	}

	route := data.Routes[0]
	return models.Route{
		DistanceKm:      route.Distance / 1000,
		DurationMinutes: route.Duration / 60,
	}, nil
}

func (c *Client) resolve(ctx context.Context, place string) (coordinate, error) {
	if coord, ok := parseCoordinate(place); ok {
		return coord, nil
	}

	endpoint := fmt.Sprintf("%s/search?format=jsonv2&limit=1&q=%s", c.geocoderURL, url.QueryEscape(place))

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	status, err := c.getJSON(ctx, endpoint, &results)
	if err != nil {
		return coordinate{}, err
	}
	if status != http.StatusOK {
		return coordinate{}, newError(statusFromHTTP(status), fmt.Errorf("geocoder returned status %d", status))
	}
	if len(results) == 0 {
		return coordinate{}, newError(StatusNotFound, fmt.Errorf("no match for %q", place))
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lng, errLng := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLng != nil {
		return coordinate{}, newError(StatusUnknownError, fmt.Errorf("geocoder returned invalid coordinates for %q", place))
	}
	return coordinate{Lat: lat, Lng: lng}, nil
}

// getJSON decodes the body into v for 2xx and 400 responses and returns the
// HTTP status.
func (c *Client) getJSON(ctx context.Context, endpoint string, v any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, newError(StatusInvalidRequest, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, newError(StatusUnknownError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, newError(StatusUnknownError, fmt.Errorf("failed to decode response: %w", err))
	}
	return resp.StatusCode, nil
}

func parseCoordinate(s string) (coordinate, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return coordinate{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || lat < -90 || lat > 90 {
		return coordinate{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || lng < -180 || lng > 180 {
		return coordinate{}, false
	}
	return coordinate{Lat: lat, Lng: lng}, true
}

func statusFromHTTP(code int) Status {
	switch {
	case code == http.StatusTooManyRequests:
		return StatusOverQueryLimit
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return StatusRequestDenied
	case code == http.StatusNotFound:
		return StatusNotFound
	case code >= 400 && code < 500:
		return StatusInvalidRequest
	default:
		return StatusUnknownError
	}
}

func statusFromOSRM(code string) Status {
	switch code {
	case "NoRoute":
		return StatusZeroResults
	case "NoSegment":
		return StatusNotFound
	case "TooBig":
		return StatusMaxWaypointsExceeded
	case "InvalidUrl", "InvalidService", "InvalidVersion", "InvalidOptions", "InvalidQuery", "InvalidValue", "NotImplemented":
		return StatusInvalidRequest
	default:
		return StatusUnknownError
	}
}
