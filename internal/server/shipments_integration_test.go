package server

import (
    "bytes"
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "os"
    "testing"

    "shipvox/internal/db"
    "shipvox/internal/rate"
)

func TestCreateShipmentIntegration(t *testing.T) {
    dbURL := os.Getenv("TEST_DATABASE_URL")
    if dbURL == "" {
        t.Skip("TEST_DATABASE_URL not set; skipping integration test")
        return
    }

    pool, err := db.NewPool(context.Background(), dbURL)
    if err != nil {
        t.Fatalf("failed to connect db: %v", err)
    }
    defer pool.Close()

    n := rate.NewNormalizer()
    h := New(pool, &stubCollector{}, n, rate.NewComparer(n))

    payload := map[string]any{
        "carrier":       "FedEx",
        "service":       "FEDEX_GROUND",
        "total_cost":    "12.00",
        "rate_currency": "USD",
        "ship_to":       map[string]any{"postal_code": "90210"},
        "ship_from":     map[string]any{"postal_code": "38115"},
        "package":       map[string]any{"weight_lb": 10.5},
    }
    body, _ := json.Marshal(payload)

    req := httptest.NewRequest(http.MethodPost, "/shipments", bytes.NewReader(body))
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d; body=%s", rr.Code, rr.Body.String())
    }

    var res ShipmentCreateResponse
    if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
        t.Fatalf("unmarshal error: %v", err)
    }
    if res.ShipmentID == "" || res.LabelURL == "" || res.Status != "created" {
        t.Fatalf("unexpected response: %+v", res)
    }
}
