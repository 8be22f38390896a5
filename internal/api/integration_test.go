package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"staymap/internal/api/handlers"
	"staymap/internal/domain/entities"
	"staymap/internal/geo"
	"staymap/internal/repository/memory"
	"staymap/internal/services"
)

func ratingPtr(v float64) *float64 { return &v }

func locPtr(lat, lon float64) *entities.Location {
	l := entities.NewLocation(lat, lon)
	return &l
}

func setupTestServer() *gin.Engine {
	gin.SetMode(gin.TestMode)

	listings := []entities.Listing{
		{ID: 1, Name: "A", URL: "https://example.com/1", Rating: ratingPtr(80), Location: locPtr(0, 0)},
		{ID: 2, Name: "B", URL: "https://example.com/2", Rating: ratingPtr(90), Location: locPtr(0, 1)},
		{ID: 3, Name: "C", URL: "https://example.com/3", Rating: ratingPtr(70), Location: locPtr(0, 2)},
	}
	entries := []entities.CalendarEntry{
		{ListingID: 1, Date: "2024-01-01", Available: true, Price: 50},
		{ListingID: 2, Date: "2024-01-01", Available: false, Price: 60},
	}

	points := make([]geo.Point, 0, len(listings))
	for _, l := range listings {
		points = append(points, geo.Point{ID: l.ID, Lat: l.Location.Latitude, Lon: l.Location.Longitude})
	}
	snapshot := &services.Snapshot{
		Index:    geo.NewIndex(points),
		Listings: memory.NewListingRepository(listings),
		Calendar: memory.NewCalendarRepository(entries),
	}

	logger := slog.New(slog.NewTextHandler(gin.DefaultWriter, nil))
	queryService := services.NewQueryService(snapshot)
	queryHandler := handlers.NewQueryHandler(queryService, logger, 1000, 0)

	router := NewRouter(queryHandler, logger)
	engine := gin.New()
	router.Setup(engine)

	return engine
}

func doGet(t *testing.T, engine *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, _ := http.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	engine := setupTestServer()

	w := doGet(t, engine, "/health")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestListingsEndpoint(t *testing.T) {
	engine := setupTestServer()

	w := doGet(t, engine, "/api/listings")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	var points []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &points); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(points) != 3 {
		t.Errorf("Expected 3 listings, got %d", len(points))
	}
	for _, key := range []string{"id", "name", "lon", "lat"} {
		if _, ok := points[0][key]; !ok {
			t.Errorf("Expected key %q in listing record", key)
		}
	}
}

func TestSearchRectangleEndpoint(t *testing.T) {
	engine := setupTestServer()

	w := doGet(t, engine, "/api/search_rectangle?min_lat=-1&min_lng=-1&max_lat=1&max_lng=1&date=2024-01-01&max_price=100")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	var results []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d. Body: %s", len(results), w.Body.String())
	}
	if results[0]["id"].(float64) != 1 {
		t.Errorf("Expected listing 1, got %v", results[0]["id"])
	}
	if results[0]["price"].(float64) != 50 {
		t.Errorf("Expected price 50, got %v", results[0]["price"])
	}
}

func TestSearchRectangleMissingDate(t *testing.T) {
	engine := setupTestServer()

	w := doGet(t, engine, "/api/search_rectangle?min_lat=-1&min_lng=-1&max_lat=1&max_lng=1")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if body["parameter"] != "date" {
		t.Errorf("Expected the missing parameter to be named, got %v", body)
	}
}

func TestSearchRectangleMalformedInput(t *testing.T) {
	engine := setupTestServer()

	// Malformed date.
	w := doGet(t, engine, "/api/search_rectangle?min_lat=-1&min_lng=-1&max_lat=1&max_lng=1&date=13-2024-01")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad date, got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if body["value"] != "13-2024-01" {
		t.Errorf("Expected the bad value to be identified, got %v", body)
	}

	// Malformed float.
	w = doGet(t, engine, "/api/search_rectangle?min_lat=abc&min_lng=-1&max_lat=1&max_lng=1&date=2024-01-01")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad float, got %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if body["parameter"] != "min_lat" {
		t.Errorf("Expected min_lat to be named, got %v", body)
	}

	// Inverted box.
	w = doGet(t, engine, "/api/search_rectangle?min_lat=5&min_lng=-1&max_lat=1&max_lng=1&date=2024-01-01")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for inverted box, got %d", w.Code)
	}
}

func TestNearestHigherEndpoint(t *testing.T) {
	engine := setupTestServer()

	w := doGet(t, engine, "/api/nearest_higher/1")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	var result map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if result["id"].(float64) != 2 {
		t.Errorf("Expected listing 2 (rated 90), got %v", result["id"])
	}
	if _, ok := result["distance_meters"]; !ok {
		t.Error("Expected distance_meters in response")
	}
}

func TestNearestHigherDistinctNotFound(t *testing.T) {
	engine := setupTestServer()

	// Unknown reference id.
	w := doGet(t, engine, "/api/nearest_higher/42")
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	refMsg := body["error"]

	// Top-rated listing has no higher-rated neighbor: also 404, but with
	// a distinguishable message.
	w = doGet(t, engine, "/api/nearest_higher/2")
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if body["error"] == refMsg {
		t.Errorf("The two not-found outcomes must be distinguishable, both said %v", refMsg)
	}

	// Non-integer id.
	w = doGet(t, engine, "/api/nearest_higher/abc")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for non-integer id, got %d", w.Code)
	}
}
