package server

import (
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
)

// helper to parse standardized error
type stdError struct {
    Error struct {
        Code    string `json:"code"`
        Message string `json:"message"`
    } `json:"error"`
}

func TestCompareRates_InvalidJSON_ErrorJSON(t *testing.T) {
    h := newTestHandler(&stubCollector{})
    req := httptest.NewRequest(http.MethodPost, "/rates", strings.NewReader("{"))
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusBadRequest {
        t.Fatalf("expected 400, got %d; body=%s", rr.Code, rr.Body.String())
    }
    var e stdError
    if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
        t.Fatalf("unmarshal error: %v", err)
    }
    if e.Error.Code != "invalid_json" {
        t.Fatalf("unexpected error code: %s", e.Error.Code)
    }
}

func TestCompareRates_MissingZips_ErrorJSON(t *testing.T) {
    h := newTestHandler(&stubCollector{})
    req := httptest.NewRequest(http.MethodPost, "/rates", strings.NewReader(`{"weight_lb":1}`))
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusBadRequest {
        t.Fatalf("expected 400, got %d; body=%s", rr.Code, rr.Body.String())
    }
    var e stdError
    if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
        t.Fatalf("unmarshal error: %v", err)
    }
    if e.Error.Code != "invalid_request" {
        t.Fatalf("unexpected error code: %s", e.Error.Code)
    }
}

// Carriers reachable but zero options: a "no shipping options" result,
// not a gateway failure.
func TestCompareRates_NoRates_ErrorJSON(t *testing.T) {
    h := newTestHandler(&stubCollector{})
    body := `{"origin_zip":"38115","destination_zip":"90210","weight_lb":2}`
    req := httptest.NewRequest(http.MethodPost, "/rates", strings.NewReader(body))
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusNotFound {
        t.Fatalf("expected 404, got %d; body=%s", rr.Code, rr.Body.String())
    }
    var e stdError
    if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
        t.Fatalf("unmarshal error: %v", err)
    }
    if e.Error.Code != "no_rates_available" {
        t.Fatalf("unexpected error code: %s", e.Error.Code)
    }
}

// Every carrier transport call failed: surfaced distinctly from the
// empty-result case.
func TestCompareRates_AllCarriersFailed_ErrorJSON(t *testing.T) {
    h := newTestHandler(&stubCollector{failed: 2})
    body := `{"origin_zip":"38115","destination_zip":"90210","weight_lb":2}`
    req := httptest.NewRequest(http.MethodPost, "/rates", strings.NewReader(body))
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusBadGateway {
        t.Fatalf("expected 502, got %d; body=%s", rr.Code, rr.Body.String())
    }
    var e stdError
    if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
        t.Fatalf("unmarshal error: %v", err)
    }
    if e.Error.Code != "carrier_unavailable" {
        t.Fatalf("unexpected error code: %s", e.Error.Code)
    }
}

func TestAddMapping_MissingFields_ErrorJSON(t *testing.T) {
    h := newTestHandler(&stubCollector{})
    req := httptest.NewRequest(http.MethodPost, "/mappings", strings.NewReader(`{"carrier":"ups"}`))
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusBadRequest {
        t.Fatalf("expected 400, got %d; body=%s", rr.Code, rr.Body.String())
    }
    var e stdError
    if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
        t.Fatalf("unmarshal error: %v", err)
    }
    if e.Error.Code != "invalid_request" {
        t.Fatalf("unexpected error code: %s", e.Error.Code)
    }
}

func TestCreateShipment_NoDatabase_ErrorJSON(t *testing.T) {
    h := newTestHandler(&stubCollector{})
    body := `{"carrier":"FedEx","service":"FEDEX_GROUND","total_cost":"12.00"}`
    req := httptest.NewRequest(http.MethodPost, "/shipments", strings.NewReader(body))
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusServiceUnavailable {
        t.Fatalf("expected 503, got %d; body=%s", rr.Code, rr.Body.String())
    }
    var e stdError
    if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
        t.Fatalf("unmarshal error: %v", err)
    }
    if e.Error.Code != "db_not_configured" {
        t.Fatalf("unexpected error code: %s", e.Error.Code)
    }
}
