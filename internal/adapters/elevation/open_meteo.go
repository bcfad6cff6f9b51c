package elevation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"solar-siting-service/internal/domain"
	"solar-siting-service/internal/platform/httpclient"
	"solar-siting-service/internal/platform/obs"
	"solar-siting-service/internal/ports"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// MaxPointsPerRequest is the largest batch Open-Meteo accepts in one call.
const MaxPointsPerRequest = 100

type elevationResponse struct {
	Elevation []float64 `json:"elevation"`
}

// OpenMeteoSource implements ElevationSource using the Open-Meteo elevation API.
//
// It coordinates:
//   - Persistent elevation caching keyed by rounded coordinate
//   - One batched request for all cache misses
//
// The source is safe for concurrent use.
type OpenMeteoSource struct {
	client  *httpclient.Client
	baseURL string
	cache   ports.ElevationCache
	log     *zap.Logger
}

func NewOpenMeteoSource(
	client *httpclient.Client,
	baseURL string,
	cache ports.ElevationCache,
	log *zap.Logger,
) (*OpenMeteoSource, error) {
	if client == nil {
		return nil, errors.New("open-meteo: http client is nil")
	}
	if baseURL == "" {
		return nil, errors.New("open-meteo: base url is empty")
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &OpenMeteoSource{
		client:  client,
		baseURL: baseURL,
		cache:   cache,
		log:     log,
	}, nil
}

// Elevations returns one elevation per point in input order.
func (o *OpenMeteoSource) Elevations(
	ctx context.Context,
	points []domain.Coordinates,
) (_ []float64, err error) {
	defer obs.Time(ctx, o.log, "openmeteo.Elevations")(&err)

	if len(points) == 0 {
		return []float64{}, nil
	}

	keys := make([]string, len(points))
	for i, p := range points {
		keys[i] = p.Key()
	}

	hits := map[string]float64{}
	// Check persistent cache before issuing external API calls.
	if o.cache != nil {
		var err error
		hits, err = o.cache.GetMany(ctx, keys)
		if err != nil {
			o.log.Warn("elevation cache read failed", zap.Error(err))
			hits = map[string]float64{}
		}
	}

	seen := make(map[string]struct{}, len(points))
	misses := make([]domain.Coordinates, 0, len(points))
	missKeys := make([]string, 0, len(points))
	for i, k := range keys {
		if _, ok := hits[k]; ok {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		misses = append(misses, points[i])
		missKeys = append(missKeys, k)
	}

	fresh := make(map[string]float64, len(misses))
	for start := 0; start < len(misses); start += MaxPointsPerRequest {
		end := min(start+MaxPointsPerRequest, len(misses))

		values, err := o.fetch(ctx, misses[start:end])
		if err != nil {
			return nil, fmt.Errorf("fetching elevations: %w", err)
		}
		for i, v := range values {
			fresh[missKeys[start+i]] = v
		}
	}

	if o.cache != nil && len(fresh) > 0 {
		if err := o.cache.PutMany(ctx, fresh); err != nil {
			o.log.Warn("elevation cache write failed", zap.Error(err))
		}
	}

	out := make([]float64, len(points))
	for i, k := range keys {
		if v, ok := hits[k]; ok {
			out[i] = v
			continue
		}
		out[i] = fresh[k]
	}

	return out, nil
}

func (o *OpenMeteoSource) fetch(ctx context.Context, points []domain.Coordinates) ([]float64, error) {
	lats := make([]string, len(points))
	lngs := make([]string, len(points))
	for i, p := range points {
		lats[i] = strconv.FormatFloat(p.Lat, 'f', -1, 64)
		lngs[i] = strconv.FormatFloat(p.Lng, 'f', -1, 64)
	}

	q := url.Values{}
	q.Set("latitude", strings.Join(lats, ","))
	q.Set("longitude", strings.Join(lngs, ","))
	endpoint := o.baseURL + "/v1/elevation?" + q.Encode()

	var decoded elevationResponse
	if err := o.client.GetJSON(ctx, endpoint, &decoded); err != nil {
		return nil, err
	}

	if decoded.Elevation == nil {
		return nil, errors.New("response has no elevation field")
	}
	if len(decoded.Elevation) != len(points) {
		return nil, fmt.Errorf(
			"elevation count does not match request: got=%d want=%d",
			len(decoded.Elevation), len(points),
		)
	}

	return decoded.Elevation, nil
}
