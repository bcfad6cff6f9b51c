package irradiance

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

	"go.uber.org/zap"
)

const (
	parameterName = "ALLSKY_SFC_SW_DWN"
	annualKey     = "ANN"
)

type climatologyResponse struct {
	Properties struct {
		Parameter map[string]map[string]float64 `json:"parameter"`
	} `json:"properties"`
}

// NASAPowerSource implements IrradianceSource using the NASA POWER
// climatology API (all-sky surface shortwave downward irradiance).
//
// Successful lookups are written to the optional cache; failures never are.
type NASAPowerSource struct {
	client  *httpclient.Client
	baseURL string
	cache   ports.IrradianceCache
	log     *zap.Logger
}

func NewNASAPowerSource(
	client *httpclient.Client,
	baseURL string,
	cache ports.IrradianceCache,
	log *zap.Logger,
) (*NASAPowerSource, error) {
	if client == nil {
		return nil, errors.New("nasa power: http client is nil")
	}
	if baseURL == "" {
		return nil, errors.New("nasa power: base url is empty")
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &NASAPowerSource{
		client:  client,
		baseURL: baseURL,
		cache:   cache,
		log:     log,
	}, nil
}

// MeanIrradiance averages the positive monthly climatology values at c.
// The annual summary is excluded; POWER marks missing months with -999.
func (n *NASAPowerSource) MeanIrradiance(ctx context.Context, c domain.Coordinates) (_ float64, err error) {
	defer obs.Time(ctx, n.log, "nasa.MeanIrradiance")(&err)

	if n.cache != nil {
		v, ok, err := n.cache.Get(ctx, c)
		if err != nil {
			n.log.Warn("irradiance cache read failed", zap.Error(err))
		} else if ok {
			return v, nil
		}
	}

	q := url.Values{}
	q.Set("parameters", parameterName)
	q.Set("community", "RE")
	q.Set("longitude", strconv.FormatFloat(c.Lng, 'f', -1, 64))
	q.Set("latitude", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	q.Set("format", "JSON")
	endpoint := n.baseURL + "/api/temporal/climatology/point?" + q.Encode()

	var decoded climatologyResponse
	if err := n.client.GetJSON(ctx, endpoint, &decoded); err != nil {
		return 0, fmt.Errorf("nasa power climatology: %w", err)
	}

	mean, err := monthlyMean(decoded.Properties.Parameter[parameterName])
	if err != nil {
		return 0, fmt.Errorf("nasa power climatology at %s: %w", c.Key(), err)
	}

	if n.cache != nil {
		if err := n.cache.Put(ctx, c, mean); err != nil {
			n.log.Warn("irradiance cache write failed", zap.Error(err))
		}
	}

	return mean, nil
}

func monthlyMean(values map[string]float64) (float64, error) {
	sum := 0.0
	count := 0
	for key, v := range values {
		if key == annualKey || v <= 0 {
			continue
		}
		sum += v
		count++
	}

	if count == 0 {
		return 0, errors.New("no usable monthly values")
	}

	return sum / float64(count), nil
}
