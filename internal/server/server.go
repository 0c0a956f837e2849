package server

import (
    "context"
    "encoding/json"
    "errors"
    "log"
    "net/http"
    "strings"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/google/uuid"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/shopspring/decimal"

    "shipvox/internal/carrier"
    "shipvox/internal/mapping"
    "shipvox/internal/rate"
)

// QuoteCollector fans a rate query out to the configured carriers.
// Implemented by carrier.Service; stubbed in tests.
type QuoteCollector interface {
    CollectQuotes(ctx context.Context, q carrier.Query) ([]rate.RawRateQuote, int)
}

type Server struct {
    db         *pgxpool.Pool
    rates      QuoteCollector
    normalizer *rate.Normalizer
    comparer   *rate.Comparer
    mappings   *mapping.Store
}

// New builds the API handler. The database pool may be nil; mapping
// persistence and shipment booking are then disabled while rate
// comparison keeps working.
func New(db *pgxpool.Pool, rates QuoteCollector, n *rate.Normalizer, c *rate.Comparer) http.Handler {
    s := &Server{db: db, rates: rates, normalizer: n, comparer: c}
    if db != nil {
        s.mappings = mapping.NewStore(db)
    }
    r := chi.NewRouter()
    // Observability: Request ID and basic logger
    r.Use(requestIDMiddleware)
    r.Use(middleware.Logger)
    r.Get("/healthz", s.handleHealth)
    r.Post("/rates", s.handleCompareRates)
    r.Post("/mappings", s.handleAddMapping)
    r.Post("/shipments", s.handleCreateShipment)
    return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
    w.WriteHeader(http.StatusOK)
    w.Write([]byte("ok"))
}

// Rates
type RateRequest struct {
    OriginZip      string  `json:"origin_zip"`
    DestinationZip string  `json:"destination_zip"`
    WeightLb       float64 `json:"weight_lb"`
    LengthIn       float64 `json:"length_in"`
    WidthIn        float64 `json:"width_in"`
    HeightIn       float64 `json:"height_in"`
}

type RateOptionResponse struct {
    Carrier           string `json:"carrier"`
    Service           string `json:"service"`
    NormalizedService string `json:"normalized_service"`
    TotalCost         string `json:"total_cost"`
    Currency          string `json:"currency"`
    EstimatedDays     *int   `json:"estimated_days,omitempty"`
}

type CompareResponse struct {
    CheapestOption          RateOptionResponse   `json:"cheapest_option"`
    FastestReasonableOption RateOptionResponse   `json:"fastest_reasonable_option"`
    AllOptions              []RateOptionResponse `json:"all_options"`
}

func (s *Server) handleCompareRates(w http.ResponseWriter, r *http.Request) {
    var req RateRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
        return
    }
    if strings.TrimSpace(req.OriginZip) == "" || strings.TrimSpace(req.DestinationZip) == "" {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "origin_zip and destination_zip required")
        return
    }
    if req.WeightLb <= 0 {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "weight_lb must be positive")
        return
    }

    quotes, failed := s.rates.CollectQuotes(r.Context(), carrier.Query{
        OriginZip:      req.OriginZip,
        DestinationZip: req.DestinationZip,
        WeightLb:       req.WeightLb,
        LengthIn:       req.LengthIn,
        WidthIn:        req.WidthIn,
        HeightIn:       req.HeightIn,
    })
    if len(quotes) == 0 && failed > 0 {
        writeErrorJSON(w, http.StatusBadGateway, "carrier_unavailable", "all carrier rate requests failed")
        return
    }

    result, err := s.comparer.Compare(quotes)
    if err != nil {
        switch {
        case errors.Is(err, rate.ErrNoRatesAvailable):
            writeErrorJSON(w, http.StatusNotFound, "no_rates_available", "no shipping options for this shipment")
        case errors.Is(err, rate.ErrInvalidQuote):
            log.Println("carrier returned invalid quote:", err)
            writeErrorJSON(w, http.StatusBadGateway, "bad_carrier_data", "carrier returned an invalid quote")
        default:
            writeErrorJSON(w, http.StatusInternalServerError, "compare_error", "rate comparison failed")
        }
        return
    }

    resp := CompareResponse{
        CheapestOption:          toOptionResponse(result.Cheapest),
        FastestReasonableOption: toOptionResponse(result.FastestReasonable),
        AllOptions:              make([]RateOptionResponse, 0, len(result.Options)),
    }
    for _, o := range result.Options {
        resp.AllOptions = append(resp.AllOptions, toOptionResponse(o))
    }
    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(resp)
}

func toOptionResponse(o rate.RateOption) RateOptionResponse {
    return RateOptionResponse{
        Carrier:           o.Carrier,
        Service:           o.ServiceName,
        NormalizedService: o.Tier,
        TotalCost:         o.TotalCost.StringFixed(2),
        Currency:          o.Currency,
        EstimatedDays:     o.TransitDays,
    }
}

// Mappings
type MappingRequest struct {
    Carrier           string `json:"carrier"`
    ServiceName       string `json:"service_name"`
    NormalizedService string `json:"normalized_service"`
}

func (s *Server) handleAddMapping(w http.ResponseWriter, r *http.Request) {
    var req MappingRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
        return
    }
    if strings.TrimSpace(req.Carrier) == "" || strings.TrimSpace(req.ServiceName) == "" || strings.TrimSpace(req.NormalizedService) == "" {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "carrier, service_name and normalized_service required")
        return
    }

    // Persist first so a db failure never leaves the durable table
    // behind the in-memory one.
    if s.mappings != nil {
        if err := s.mappings.Save(r.Context(), req.Carrier, req.ServiceName, req.NormalizedService); err != nil {
            log.Println("save mapping error:", err)
            writeErrorJSON(w, http.StatusInternalServerError, "db_error", "failed to save mapping")
            return
        }
    }
    s.normalizer.AddMapping(req.Carrier, req.ServiceName, req.NormalizedService)
    w.WriteHeader(http.StatusNoContent)
}

// Shipments
type ShipmentCreateRequest struct {
    Carrier      string          `json:"carrier"`
    Service      string          `json:"service"`
    TotalCost    string          `json:"total_cost"`
    RateCurrency string          `json:"rate_currency"`
    ShipTo       json.RawMessage `json:"ship_to"`
    ShipFrom     json.RawMessage `json:"ship_from"`
    Package      json.RawMessage `json:"package"`
    Metadata     json.RawMessage `json:"metadata"`
}

type ShipmentCreateResponse struct {
    ShipmentID string `json:"shipment_id"`
    LabelURL   string `json:"label_url"`
    Status     string `json:"status"`
    CreatedAt  string `json:"created_at"`
}

// handleCreateShipment books a previously quoted option: it records the
// shipment with its selected carrier/service/cost plus a label row whose
// document URL points at the (external) label renderer.
func (s *Server) handleCreateShipment(w http.ResponseWriter, r *http.Request) {
    if s.db == nil {
        writeErrorJSON(w, http.StatusServiceUnavailable, "db_not_configured", "shipment booking requires a database")
        return
    }
    var req ShipmentCreateRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
        return
    }
    if strings.TrimSpace(req.Carrier) == "" || strings.TrimSpace(req.Service) == "" {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "carrier and service required")
        return
    }
    cost, err := decimal.NewFromString(strings.TrimSpace(req.TotalCost))
    if err != nil || !cost.IsPositive() {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "total_cost must be a positive decimal")
        return
    }

    // Defaults
    if req.RateCurrency == "" {
        req.RateCurrency = "USD"
    }
    if req.Metadata == nil {
        req.Metadata = json.RawMessage("{}")
    }

    ctx := r.Context()
    shipmentID := uuid.New()
    now := time.Now().UTC()

    _, err = s.db.Exec(ctx, `
        INSERT INTO shipments (
            id, carrier, service, status,
            rate_currency, rate_amount, ship_to, ship_from, package, metadata,
            created_at, updated_at
        ) VALUES (
            $1, $2, $3, 'created',
            $4, $5::numeric, $6::jsonb, $7::jsonb, $8::jsonb, $9::jsonb,
            $10, $10
        )
    `,
        shipmentID,
        req.Carrier,
        req.Service,
        req.RateCurrency,
        cost.StringFixed(2),
        string(req.ShipTo),
        string(req.ShipFrom),
        string(req.Package),
        string(req.Metadata),
        now,
    )
    if err != nil {
        log.Println("insert shipment error:", err)
        writeErrorJSON(w, http.StatusInternalServerError, "db_error", "failed to create shipment")
        return
    }

    labelID := uuid.New()
    labelURL := "https://example.com/label/" + shipmentID.String() + ".pdf"
    _, err = s.db.Exec(ctx, `
        INSERT INTO labels (
            id, shipment_id, document_url, format, size, cost, currency, metadata, created_at
        ) VALUES (
            $1, $2, $3, 'pdf', '4x6', 0.00, $4, $5::jsonb, $6
        )
    `,
        labelID,
        shipmentID,
        labelURL,
        req.RateCurrency,
        "{}",
        now,
    )
    if err != nil {
        log.Println("insert label error:", err)
        writeErrorJSON(w, http.StatusInternalServerError, "db_error", "failed to create label")
        return
    }

    res := ShipmentCreateResponse{
        ShipmentID: shipmentID.String(),
        LabelURL:   labelURL,
        Status:     "created",
        CreatedAt:  now.Format(time.RFC3339),
    }
    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(res)
}

// writeErrorJSON writes a standardized JSON error response:
// {"error": {"code": string, "message": string}}
func writeErrorJSON(w http.ResponseWriter, status int, code string, message string) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(map[string]any{
        "error": map[string]string{
            "code":    code,
            "message": message,
        },
    })
}

// requestIDMiddleware ensures X-Request-ID is set on the response.
// If provided in the request header, it is propagated; otherwise a UUID is generated.
func requestIDMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
        if rid == "" {
            rid = uuid.New().String()
        }
        w.Header().Set("X-Request-ID", rid)
        next.ServeHTTP(w, r)
    })
}
