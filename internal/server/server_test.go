package server

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/shopspring/decimal"

    "shipvox/internal/carrier"
    "shipvox/internal/rate"
)

type stubCollector struct {
    quotes []rate.RawRateQuote
    failed int
}

func (s *stubCollector) CollectQuotes(ctx context.Context, q carrier.Query) ([]rate.RawRateQuote, int) {
    return s.quotes, s.failed
}

func days(d int) *int { return &d }

func newTestHandler(c *stubCollector) http.Handler {
    n := rate.NewNormalizer()
    return New(nil, c, n, rate.NewComparer(n))
}

func TestHealthz(t *testing.T) {
    h := newTestHandler(&stubCollector{})
    req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    if body := rr.Body.String(); body != "ok" {
        t.Fatalf("expected body 'ok', got %q", body)
    }
}

func TestCompareRates(t *testing.T) {
    h := newTestHandler(&stubCollector{quotes: []rate.RawRateQuote{
        {Carrier: "FedEx", ServiceName: "FEDEX_GROUND", ServiceCode: "FEDEX_GROUND", TotalCharge: decimal.RequireFromString("12.00"), Currency: "USD", TransitDays: days(5)},
        {Carrier: "UPS", ServiceName: "UPS Next Day Air", ServiceCode: "01", TotalCharge: decimal.RequireFromString("45.00"), Currency: "USD", TransitDays: days(1)},
    }})
    body := `{"origin_zip":"38115","destination_zip":"90210","weight_lb":10.5,"length_in":12,"width_in":8,"height_in":6}`
    req := httptest.NewRequest(http.MethodPost, "/rates", strings.NewReader(body))
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d; body=%s", rr.Code, rr.Body.String())
    }

    var res CompareResponse
    if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
        t.Fatalf("failed to unmarshal: %v", err)
    }
    if res.CheapestOption.Service != "FEDEX_GROUND" || res.CheapestOption.TotalCost != "12.00" {
        t.Fatalf("unexpected cheapest: %+v", res.CheapestOption)
    }
    if res.CheapestOption.NormalizedService != rate.TierGround {
        t.Fatalf("unexpected tier: %+v", res.CheapestOption)
    }
    // 45.00 is beyond the 1.5x ceiling, so fastest falls back to cheapest.
    if res.FastestReasonableOption.Service != "FEDEX_GROUND" {
        t.Fatalf("unexpected fastest: %+v", res.FastestReasonableOption)
    }
    if len(res.AllOptions) != 2 || res.AllOptions[0].TotalCost != "12.00" {
        t.Fatalf("unexpected listing: %+v", res.AllOptions)
    }
}

func TestAddMappingInMemory(t *testing.T) {
    n := rate.NewNormalizer()
    h := New(nil, &stubCollector{}, n, rate.NewComparer(n))

    body := `{"carrier":"fedex","service_name":"SmartPost","normalized_service":"Economy"}`
    req := httptest.NewRequest(http.MethodPost, "/mappings", strings.NewReader(body))
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusNoContent {
        t.Fatalf("expected 204, got %d; body=%s", rr.Code, rr.Body.String())
    }
    if got := n.Normalize("fedex", "SmartPost", ""); got != "Economy" {
        t.Fatalf("mapping not applied: %q", got)
    }
}

func TestRequestIDHeaderPresent(t *testing.T) {
    h := newTestHandler(&stubCollector{})
    req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    if rid := rr.Header().Get("X-Request-ID"); rid == "" {
        t.Fatalf("expected X-Request-ID header to be set")
    }
}
