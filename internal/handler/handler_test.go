package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iliyamo/plant-catalog/internal/handler"
	"github.com/iliyamo/plant-catalog/internal/metrics"
	"github.com/iliyamo/plant-catalog/internal/model"
	"github.com/iliyamo/plant-catalog/internal/queue"
	"github.com/iliyamo/plant-catalog/internal/repository"
	"github.com/iliyamo/plant-catalog/internal/router"
)

// memStore keeps plants in insertion order and evaluates filters in process.
type memStore struct {
	mu     sync.Mutex
	plants []model.Plant
	err    error
}

func (s *memStore) Create(_ context.Context, p *model.Plant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	p.ID = primitive.NewObjectID()
	s.plants = append(s.plants, *p)
	return nil
}

func (s *memStore) List(_ context.Context, f repository.PlantFilter, limit int64) ([]model.Plant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []model.Plant{}
	for _, p := range s.plants {
		if limit > 0 && int64(len(out)) == limit {
			break
		}
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memStore) Seed(ctx context.Context, samples []model.Plant) ([]model.Plant, error) {
	s.mu.Lock()
	n := len(s.plants)
	s.mu.Unlock()
	if n > 0 {
		return nil, nil
	}
	out := make([]model.Plant, 0, len(samples))
	for _, p := range samples {
		if err := s.Create(ctx, &p); err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.PlantCreatedEvent
	err    error
}

func (r *recordingPublisher) PublishPlantCreated(_ context.Context, ev queue.PlantCreatedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

type fixture struct {
	e       *echo.Echo
	store   *memStore
	events  *recordingPublisher
	metrics *metrics.Metrics
}

func setup(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: &memStore{}, events: &recordingPublisher{}, metrics: metrics.New()}
	f.e = router.New(router.Deps{
		Plants:      handler.NewPlantHandler(f.store, f.events, f.metrics),
		Diagnostics: &handler.DiagnosticsHandler{},
		Metrics:     f.metrics,
	})
	return f
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var v map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func decodeJSONArray(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var v []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func names(items []map[string]any) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it["name"].(string))
	}
	return out
}

func TestRootAndHealth(t *testing.T) {
	f := setup(t)

	rec := f.do(t, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decodeJSON(t, rec)["message"]; got != "Spiritual Plant Catalog API running" {
		t.Fatalf("unexpected message %v", got)
	}

	rec = f.do(t, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("expected 200 ok, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestSeedScenario(t *testing.T) {
	f := setup(t)

	rec := f.do(t, http.MethodPost, "/api/plants/seed", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeJSON(t, rec)
	if body["inserted"] != float64(3) {
		t.Fatalf("expected inserted=3, got %v", body["inserted"])
	}
	if _, ok := body["message"]; ok {
		t.Fatalf("first seed must not carry a message, got %v", body["message"])
	}

	rec = f.do(t, http.MethodPost, "/api/plants/seed", nil)
	body = decodeJSON(t, rec)
	if body["inserted"] != float64(0) || body["message"] != "Already seeded" {
		t.Fatalf("expected {inserted:0, message:Already seeded}, got %v", body)
	}

	all := decodeJSONArray(t, f.do(t, http.MethodGet, "/api/plants", nil))
	if len(all) != 3 {
		t.Fatalf("expected 3 plants after seeding twice, got %d", len(all))
	}

	if len(f.events.events) != 3 || f.events.events[0].Source != queue.SourceSeed {
		t.Fatalf("expected 3 seed events, got %+v", f.events.events)
	}
	if got := testutil.ToFloat64(f.metrics.PlantsSeeded); got != 3 {
		t.Fatalf("expected seeded counter 3, got %v", got)
	}
}

func TestListFilters(t *testing.T) {
	f := setup(t)
	f.do(t, http.MethodPost, "/api/plants/seed", nil)

	featured := decodeJSONArray(t, f.do(t, http.MethodGet, "/api/plants?featured=true", nil))
	if got := names(featured); len(got) != 1 || got[0] != "Red Spider Lily" {
		t.Fatalf("expected only Red Spider Lily, got %v", got)
	}

	notFeatured := decodeJSONArray(t, f.do(t, http.MethodGet, "/api/plants?featured=false", nil))
	if len(notFeatured) != 2 {
		t.Fatalf("expected 2 non-featured plants, got %v", names(notFeatured))
	}

	gold := decodeJSONArray(t, f.do(t, http.MethodGet, "/api/plants?q=gold", nil))
	if got := names(gold); len(got) != 1 || got[0] != "Golden Pothos" {
		t.Fatalf("expected only Golden Pothos, got %v", got)
	}

	heart := decodeJSONArray(t, f.do(t, http.MethodGet, "/api/plants?q=HEART", nil))
	if got := names(heart); len(got) != 1 || got[0] != "White Peace Lily" {
		t.Fatalf("expected chakra match on White Peace Lily, got %v", got)
	}

	both := decodeJSONArray(t, f.do(t, http.MethodGet, "/api/plants?q=lily&featured=false", nil))
	if got := names(both); len(got) != 1 || got[0] != "White Peace Lily" {
		t.Fatalf("expected White Peace Lily, got %v", got)
	}

	limited := decodeJSONArray(t, f.do(t, http.MethodGet, "/api/plants?limit=2", nil))
	if got := names(limited); len(got) != 2 || got[0] != "Red Spider Lily" || got[1] != "White Peace Lily" {
		t.Fatalf("expected first two in insertion order, got %v", got)
	}

	none := f.do(t, http.MethodGet, "/api/plants?q=cactus", nil)
	if strings.TrimSpace(none.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %s", none.Body.String())
	}
}

func TestListRejectsBadParams(t *testing.T) {
	f := setup(t)
	for _, target := range []string{
		"/api/plants?featured=maybe",
		"/api/plants?limit=ten",
		"/api/plants?limit=-1",
	} {
		rec := f.do(t, http.MethodGet, target, nil)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%s: expected 422, got %d", target, rec.Code)
		}
		detail := decodeJSON(t, rec)["detail"].([]any)
		loc := detail[0].(map[string]any)["loc"].([]any)
		if loc[0] != "query" {
			t.Fatalf("%s: expected query location, got %v", target, loc)
		}
	}
}

func TestCreateRoundTrip(t *testing.T) {
	f := setup(t)
	in := map[string]any{
		"name":        "Jade",
		"species":     "Crassula ovata",
		"pot_style":   "Stoneware",
		"chakra":      "Heart",
		"mantra":      "I grow steadily.",
		"description": "Coins of green.",
		"price":       42.5,
		"tags":        []string{"luck", "succulent", "luck"},
		"featured":    true,
		"image_url":   "https://example.com/jade.jpg",
	}
	rec := f.do(t, http.MethodPost, "/api/plants", in)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeJSON(t, rec)
	id, _ := created["id"].(string)
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		t.Fatalf("expected hex object id, got %q", id)
	}

	list := decodeJSONArray(t, f.do(t, http.MethodGet, "/api/plants", nil))
	if len(list) != 1 {
		t.Fatalf("expected 1 plant, got %d", len(list))
	}
	got := list[0]
	if got["id"] != id {
		t.Fatalf("expected listed id %s, got %v", id, got["id"])
	}
	for _, k := range []string{"name", "species", "pot_style", "chakra", "mantra", "description", "image_url"} {
		if got[k] != in[k] {
			t.Fatalf("%s: expected %v, got %v", k, in[k], got[k])
		}
	}
	if got["price"] != 42.5 || got["featured"] != true {
		t.Fatalf("unexpected price/featured: %v", got)
	}
	tags := got["tags"].([]any)
	if len(tags) != 3 || tags[0] != "luck" || tags[2] != "luck" {
		t.Fatalf("expected tags unchanged, got %v", tags)
	}

	if len(f.events.events) != 1 || f.events.events[0].PlantID != id || f.events.events[0].Source != queue.SourceAPI {
		t.Fatalf("expected one api event for %s, got %+v", id, f.events.events)
	}
	if got := testutil.ToFloat64(f.metrics.PlantsCreated); got != 1 {
		t.Fatalf("expected created counter 1, got %v", got)
	}
}

func TestCreateDefaults(t *testing.T) {
	f := setup(t)
	rec := f.do(t, http.MethodPost, "/api/plants", map[string]any{"name": "Fern"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeJSON(t, rec)
	if tags, ok := got["tags"].([]any); !ok || len(tags) != 0 {
		t.Fatalf("expected empty tags, got %v", got["tags"])
	}
	if got["featured"] != false {
		t.Fatalf("expected featured=false, got %v", got["featured"])
	}
	for _, k := range []string{"species", "price", "image_url"} {
		if v, ok := got[k]; !ok || v != nil {
			t.Fatalf("expected %s to be null, got %v (present=%v)", k, v, ok)
		}
	}
}

func TestCreateValidation(t *testing.T) {
	f := setup(t)
	cases := []struct {
		name  string
		body  any
		field string
	}{
		{"missing name", map[string]any{"species": "x"}, "name"},
		{"empty name", map[string]any{"name": ""}, "name"},
		{"negative price", map[string]any{"name": "x", "price": -1}, "price"},
		{"malformed url", map[string]any{"name": "x", "image_url": "not-a-url"}, "image_url"},
		{"wrong type", `{"name": 5}`, ""},
		{"broken json", `{"name": `, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/plants", tc.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
			}
			detail := decodeJSON(t, rec)["detail"].([]any)
			loc := detail[0].(map[string]any)["loc"].([]any)
			if loc[0] != "body" {
				t.Fatalf("expected body location, got %v", loc)
			}
			if tc.field != "" && (len(loc) < 2 || loc[1] != tc.field) {
				t.Fatalf("expected field %s, got %v", tc.field, loc)
			}
		})
	}
	if len(f.store.plants) != 0 {
		t.Fatalf("invalid payloads must not be stored, got %d", len(f.store.plants))
	}
}

func TestPublishFailureDoesNotFailCreate(t *testing.T) {
	f := setup(t)
	f.events.err = errors.New("broker down")
	rec := f.do(t, http.MethodPost, "/api/plants", map[string]any{"name": "Fern"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 despite publish failure, got %d", rec.Code)
	}
}

func TestStorageErrors(t *testing.T) {
	f := setup(t)
	f.store.err = errors.New("connection reset")

	rec := f.do(t, http.MethodGet, "/api/plants", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := decodeJSON(t, rec)["detail"]; got != "database error" {
		t.Fatalf("expected generic detail, got %v", got)
	}

	rec = f.do(t, http.MethodPost, "/api/plants", map[string]any{"name": "Fern"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestDegradedMode(t *testing.T) {
	e := router.New(router.Deps{
		Plants:      handler.NewPlantHandler(repository.NewPlantRepo(nil), nil, nil),
		Diagnostics: &handler.DiagnosticsHandler{Probe: repository.NewDiagnosticsRepo(nil)},
	})
	f := &fixture{e: e}

	for _, tc := range []struct{ method, target string }{
		{http.MethodGet, "/api/plants"},
		{http.MethodPost, "/api/plants/seed"},
	} {
		rec := f.do(t, tc.method, tc.target, nil)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("%s %s: expected 500, got %d", tc.method, tc.target, rec.Code)
		}
		if got := decodeJSON(t, rec)["detail"]; got != "Database not configured" {
			t.Fatalf("%s %s: unexpected detail %v", tc.method, tc.target, got)
		}
	}

	rec := f.do(t, http.MethodPost, "/api/plants", map[string]any{"name": "Fern"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("create: expected 500, got %d", rec.Code)
	}
	rec = f.do(t, http.MethodPost, "/api/plants", map[string]any{"price": -1})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("create: validation must run before the configuration check, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/test", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("/test: expected 200, got %d", rec.Code)
	}
	report := decodeJSON(t, rec)
	if report["database_url"] != "❌ Not Set" {
		t.Fatalf("expected database_url not set, got %v", report["database_url"])
	}
	if report["database"] != "⚠️  Available but not initialized" {
		t.Fatalf("expected degraded database status, got %v", report["database"])
	}
	if report["connection_status"] != "Not Connected" {
		t.Fatalf("expected Not Connected, got %v", report["connection_status"])
	}
}

func TestCORS(t *testing.T) {
	f := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderOrigin, "https://anywhere.example")
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/plants", nil)
	req.Header.Set(echo.HeaderOrigin, "https://anywhere.example")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec = httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := setup(t)
	f.do(t, http.MethodPost, "/api/plants", map[string]any{"name": "Fern"})

	rec := f.do(t, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "catalog_plants_created_total 1") {
		t.Fatalf("expected created counter in exposition, got:\n%s", rec.Body.String())
	}
}

func TestNotFoundShape(t *testing.T) {
	f := setup(t)
	rec := f.do(t, http.MethodGet, "/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if _, ok := decodeJSON(t, rec)["detail"]; !ok {
		t.Fatal("expected detail key")
	}
}
