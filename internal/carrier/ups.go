package carrier

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "strconv"
    "time"

    "github.com/shopspring/decimal"
    xrate "golang.org/x/time/rate"

    "shipvox/internal/auth"
    "shipvox/internal/rate"
)

var upsBaseURLs = map[string]string{
    "production": "https://onlinetools.ups.com",
    "sandbox":    "https://wwwcie.ups.com",
}

// UPSBaseURL resolves the API host for an environment name, defaulting
// to sandbox.
func UPSBaseURL(environment string) string {
    if u, ok := upsBaseURLs[environment]; ok {
        return u
    }
    return upsBaseURLs["sandbox"]
}

// UPSClient fetches rate quotes from the UPS rating API ("Shop" mode,
// which returns every available service in one call).
type UPSClient struct {
    httpClient *http.Client
    baseURL    string
    tokens     auth.TokenSource
    limiter    *xrate.Limiter
}

func NewUPSClient(baseURL string, tokens auth.TokenSource) *UPSClient {
    return &UPSClient{
        httpClient: &http.Client{Timeout: 30 * time.Second},
        baseURL:    baseURL,
        tokens:     tokens,
        limiter:    xrate.NewLimiter(xrate.Limit(5), 10),
    }
}

func (c *UPSClient) Carrier() string { return "UPS" }

func (c *UPSClient) FetchRates(ctx context.Context, q Query) ([]rate.RawRateQuote, error) {
    if err := c.limiter.Wait(ctx); err != nil {
        return nil, err
    }
    token, err := c.tokens.Token(ctx)
    if err != nil {
        return nil, fmt.Errorf("%w: ups auth: %v", ErrCarrierUnavailable, err)
    }

    payload := map[string]any{
        "RateRequest": map[string]any{
            "Request":    map[string]any{"RequestOption": "Shop"},
            "PickupType": map[string]any{"Code": "01"},
            "Shipment": map[string]any{
                "Shipper": map[string]any{"Address": map[string]any{"PostalCode": q.OriginZip, "CountryCode": "US"}},
                "ShipTo":  map[string]any{"Address": map[string]any{"PostalCode": q.DestinationZip, "CountryCode": "US"}},
                "Package": map[string]any{
                    "PackagingType": map[string]any{"Code": "02"},
                    "Dimensions": map[string]any{
                        "UnitOfMeasurement": map[string]any{"Code": "IN"},
                        "Length":            strconv.FormatFloat(q.LengthIn, 'f', -1, 64),
                        "Width":             strconv.FormatFloat(q.WidthIn, 'f', -1, 64),
                        "Height":            strconv.FormatFloat(q.HeightIn, 'f', -1, 64),
                    },
                    "PackageWeight": map[string]any{
                        "UnitOfMeasurement": map[string]any{"Code": "LBS"},
                        "Weight":            strconv.FormatFloat(q.WeightLb, 'f', -1, 64),
                    },
                },
            },
        },
    }
    body, err := json.Marshal(payload)
    if err != nil {
        return nil, err
    }

    req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/rating/v1/Shop", bytes.NewReader(body))
    if err != nil {
        return nil, err
    }
    req.Header.Set("Content-Type", "application/json")
    req.Header.Set("Authorization", "Bearer "+token)

    resp, err := c.httpClient.Do(req)
    if err != nil {
        return nil, fmt.Errorf("%w: ups: %v", ErrCarrierUnavailable, err)
    }
    defer resp.Body.Close()
    respBody, err := io.ReadAll(resp.Body)
    if err != nil {
        return nil, fmt.Errorf("%w: ups: %v", ErrCarrierUnavailable, err)
    }
    if resp.StatusCode != http.StatusOK {
        return nil, fmt.Errorf("%w: ups status %d: %s", ErrCarrierUnavailable, resp.StatusCode, respBody)
    }
    return parseUPSResponse(respBody)
}

type upsRateReply struct {
    RateResponse struct {
        RatedShipment []upsRatedShipment `json:"RatedShipment"`
    } `json:"RateResponse"`
}

type upsRatedShipment struct {
    Service struct {
        Code        string `json:"Code"`
        Description string `json:"Description"`
    } `json:"Service"`
    TransportationCharges struct {
        MonetaryValue string `json:"MonetaryValue"`
    } `json:"TransportationCharges"`
    TotalCharges struct {
        CurrencyCode  string `json:"CurrencyCode"`
        MonetaryValue string `json:"MonetaryValue"`
    } `json:"TotalCharges"`
    GuaranteedDelivery *struct {
        BusinessDaysInTransit string `json:"BusinessDaysInTransit"`
    } `json:"GuaranteedDelivery"`
}

func parseUPSResponse(body []byte) ([]rate.RawRateQuote, error) {
    var reply upsRateReply
    if err := json.Unmarshal(body, &reply); err != nil {
        return nil, fmt.Errorf("ups response: %w", err)
    }

    var quotes []rate.RawRateQuote
    for _, rs := range reply.RateResponse.RatedShipment {
        total, err := decimal.NewFromString(rs.TotalCharges.MonetaryValue)
        if err != nil {
            return nil, fmt.Errorf("ups quote %s: bad total charge %q", rs.Service.Code, rs.TotalCharges.MonetaryValue)
        }
        base, err := decimal.NewFromString(rs.TransportationCharges.MonetaryValue)
        if err != nil {
            base = total
        }
        name := rs.Service.Description
        if name == "" {
            name = "UPS " + rs.Service.Code
        }
        q := rate.RawRateQuote{
            Carrier:     "UPS",
            ServiceName: name,
            ServiceCode: rs.Service.Code,
            BaseCharge:  base,
            TotalCharge: total,
            Currency:    orUSD(rs.TotalCharges.CurrencyCode),
        }
        if rs.GuaranteedDelivery != nil {
            q.Guaranteed = true
            if days, err := strconv.Atoi(rs.GuaranteedDelivery.BusinessDaysInTransit); err == nil {
                q.TransitDays = &days
            }
        }
        quotes = append(quotes, q)
    }
    return quotes, nil
}
