package elevation

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"solar-siting-service/internal/domain"
	"solar-siting-service/internal/platform/httpclient"
	"solar-siting-service/internal/ports"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

type mapCache struct {
	m map[string]float64
}

func (c *mapCache) GetMany(ctx context.Context, keys []string) (map[string]float64, error) {
	out := map[string]float64{}
	for _, k := range keys {
		if v, ok := c.m[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (c *mapCache) PutMany(ctx context.Context, elevations map[string]float64) error {
	for k, v := range elevations {
		c.m[k] = v
	}
	return nil
}

type sizeLog struct {
	mu    sync.Mutex
	sizes []int
}

func (l *sizeLog) add(n int) {
	l.mu.Lock()
	l.sizes = append(l.sizes, n)
	l.mu.Unlock()
}

func (l *sizeLog) get() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int(nil), l.sizes...)
}

// echoServer answers each latitude with elevation = latitude * 10.
func echoServer(t *testing.T, calls *atomic.Int32, sizes *sizeLog) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/v1/elevation" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		lats := strings.Split(r.URL.Query().Get("latitude"), ",")
		lngs := strings.Split(r.URL.Query().Get("longitude"), ",")
		if len(lats) != len(lngs) {
			t.Errorf("latitude/longitude length mismatch: %d vs %d", len(lats), len(lngs))
		}
		if sizes != nil {
			sizes.add(len(lats))
		}

		vals := make([]string, len(lats))
		for i, s := range lats {
			f, _ := strconv.ParseFloat(s, 64)
			vals[i] = strconv.FormatFloat(f*10, 'f', -1, 64)
		}
		fmt.Fprintf(w, `{"elevation":[%s]}`, strings.Join(vals, ","))
	}))
}

func newSource(t *testing.T, url string, cache ports.ElevationCache) *OpenMeteoSource {
	t.Helper()
	src, err := NewOpenMeteoSource(httpclient.New(httpclient.Options{MaxAttempts: 1}), url, cache, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return src
}

func TestElevationsPreserveOrder(t *testing.T) {
	var calls atomic.Int32
	srv := echoServer(t, &calls, nil)
	defer srv.Close()

	src := newSource(t, srv.URL, nil)
	points := []domain.Coordinates{{Lat: 3, Lng: 0}, {Lat: 1, Lng: 0}, {Lat: 2, Lng: 0}}

	got, err := src.Elevations(context.Background(), points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []float64{30, 10, 20}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("elevations = %v, want %v", got, want)
		}
	}
}

func TestElevationsSplitLargeRequests(t *testing.T) {
	var calls atomic.Int32
	sizes := &sizeLog{}
	srv := echoServer(t, &calls, sizes)
	defer srv.Close()

	points := make([]domain.Coordinates, 150)
	for i := range points {
		points[i] = domain.Coordinates{Lat: float64(i) / 100, Lng: 0}
	}

	got, err := newSource(t, srv.URL, nil).Elevations(context.Background(), points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 150 {
		t.Fatalf("len = %d, want 150", len(got))
	}
	if got := sizes.get(); len(got) != 2 || got[0] != 100 || got[1] != 50 {
		t.Fatalf("request sizes = %v, want [100 50]", got)
	}
}

func TestElevationsUseCacheForHits(t *testing.T) {
	var calls atomic.Int32
	sizes := &sizeLog{}
	srv := echoServer(t, &calls, sizes)
	defer srv.Close()

	hit := domain.Coordinates{Lat: 5, Lng: 5}
	cache := &mapCache{m: map[string]float64{hit.Key(): 777}}
	src := newSource(t, srv.URL, cache)

	got, err := src.Elevations(context.Background(), []domain.Coordinates{hit, {Lat: 4, Lng: 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != 777 || got[1] != 40 {
		t.Fatalf("elevations = %v, want [777 40]", got)
	}
	if got := sizes.get(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("request sizes = %v, want [1]", got)
	}

	// Second call is served entirely from cache.
	if _, err := src.Elevations(context.Background(), []domain.Coordinates{hit, {Lat: 4, Lng: 0}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("upstream calls = %d, want 1", got)
	}
}

func TestElevationsRejectMismatchedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"elevation":[1]}`))
	}))
	defer srv.Close()

	_, err := newSource(t, srv.URL, nil).Elevations(
		context.Background(),
		[]domain.Coordinates{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}},
	)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestElevationsRejectMissingField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":true,"reason":"bad"}`))
	}))
	defer srv.Close()

	_, err := newSource(t, srv.URL, nil).Elevations(context.Background(), []domain.Coordinates{{Lat: 1, Lng: 1}})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
}
