package carrier

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "time"

    "github.com/shopspring/decimal"
    xrate "golang.org/x/time/rate"

    "shipvox/internal/auth"
    "shipvox/internal/rate"
)

var fedexBaseURLs = map[string]string{
    "production": "https://apis.fedex.com",
    "sandbox":    "https://apis-sandbox.fedex.com",
}

// FedExBaseURL resolves the API host for an environment name,
// defaulting to sandbox.
func FedExBaseURL(environment string) string {
    if u, ok := fedexBaseURLs[environment]; ok {
        return u
    }
    return fedexBaseURLs["sandbox"]
}

// fedexTransitDays maps the transitTime words of the rate reply to day
// counts. Unlisted values leave the estimate absent.
var fedexTransitDays = map[string]int{
    "SAME_DAY":    0,
    "ONE_DAY":     1,
    "TWO_DAYS":    2,
    "THREE_DAYS":  3,
    "FOUR_DAYS":   4,
    "FIVE_DAYS":   5,
    "SIX_DAYS":    6,
    "SEVEN_DAYS":  7,
    "EIGHT_DAYS":  8,
    "NINE_DAYS":   9,
    "TEN_DAYS":    10,
}

// FedExClient fetches rate quotes from the FedEx rating API.
type FedExClient struct {
    httpClient    *http.Client
    baseURL       string
    accountNumber string
    tokens        auth.TokenSource
    limiter       *xrate.Limiter
}

func NewFedExClient(baseURL, accountNumber string, tokens auth.TokenSource) *FedExClient {
    return &FedExClient{
        httpClient:    &http.Client{Timeout: 30 * time.Second},
        baseURL:       baseURL,
        accountNumber: accountNumber,
        tokens:        tokens,
        // FedEx throttles aggressively on sandbox keys.
        limiter: xrate.NewLimiter(xrate.Limit(5), 10),
    }
}

func (c *FedExClient) Carrier() string { return "FedEx" }

func (c *FedExClient) FetchRates(ctx context.Context, q Query) ([]rate.RawRateQuote, error) {
    if err := c.limiter.Wait(ctx); err != nil {
        return nil, err
    }
    token, err := c.tokens.Token(ctx)
    if err != nil {
        return nil, fmt.Errorf("%w: fedex auth: %v", ErrCarrierUnavailable, err)
    }

    payload := map[string]any{
        "accountNumber": map[string]any{"value": c.accountNumber},
        "requestedShipment": map[string]any{
            "shipper":         map[string]any{"address": map[string]any{"postalCode": q.OriginZip, "countryCode": "US"}},
            "recipient":       map[string]any{"address": map[string]any{"postalCode": q.DestinationZip, "countryCode": "US"}},
            "pickupType":      "DROPOFF_AT_FEDEX_LOCATION",
            "rateRequestType": []string{"LIST"},
            "requestedPackageLineItems": []map[string]any{{
                "weight":     map[string]any{"value": q.WeightLb, "units": "LB"},
                "dimensions": map[string]any{"length": q.LengthIn, "width": q.WidthIn, "height": q.HeightIn, "units": "IN"},
            }},
        },
    }
    body, err := json.Marshal(payload)
    if err != nil {
        return nil, err
    }

    req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rate/v1/rates/quotes", bytes.NewReader(body))
    if err != nil {
        return nil, err
    }
    req.Header.Set("Content-Type", "application/json")
    req.Header.Set("Authorization", "Bearer "+token)

    resp, err := c.httpClient.Do(req)
    if err != nil {
        return nil, fmt.Errorf("%w: fedex: %v", ErrCarrierUnavailable, err)
    }
    defer resp.Body.Close()
    respBody, err := io.ReadAll(resp.Body)
    if err != nil {
        return nil, fmt.Errorf("%w: fedex: %v", ErrCarrierUnavailable, err)
    }
    if resp.StatusCode != http.StatusOK {
        return nil, fmt.Errorf("%w: fedex status %d: %s", ErrCarrierUnavailable, resp.StatusCode, respBody)
    }
    return parseFedExResponse(respBody)
}

type fedexRateReply struct {
    Output struct {
        RateReplyDetails []struct {
            ServiceName          string `json:"serviceName"`
            ServiceType          string `json:"serviceType"`
            TransitTime          string `json:"transitTime"`
            RatedShipmentDetails []struct {
                ShipmentRateDetail struct {
                    TotalBaseCharge json.Number `json:"totalBaseCharge"`
                    TotalNetCharge  json.Number `json:"totalNetCharge"`
                    CurrencyCode    string      `json:"currency"`
                } `json:"shipmentRateDetail"`
            } `json:"ratedShipmentDetails"`
        } `json:"rateReplyDetails"`
    } `json:"output"`
}

func parseFedExResponse(body []byte) ([]rate.RawRateQuote, error) {
    var reply fedexRateReply
    if err := json.Unmarshal(body, &reply); err != nil {
        return nil, fmt.Errorf("fedex response: %w", err)
    }

    var quotes []rate.RawRateQuote
    for _, d := range reply.Output.RateReplyDetails {
        if len(d.RatedShipmentDetails) == 0 {
            continue
        }
        detail := d.RatedShipmentDetails[0].ShipmentRateDetail
        total, err := decimal.NewFromString(detail.TotalNetCharge.String())
        if err != nil {
            return nil, fmt.Errorf("fedex quote %s: bad net charge %q", d.ServiceType, detail.TotalNetCharge)
        }
        base, err := decimal.NewFromString(detail.TotalBaseCharge.String())
        if err != nil {
            base = total
        }
        q := rate.RawRateQuote{
            Carrier:     "FedEx",
            ServiceName: d.ServiceName,
            ServiceCode: d.ServiceType,
            BaseCharge:  base,
            TotalCharge: total,
            Currency:    orUSD(detail.CurrencyCode),
        }
        if days, ok := fedexTransitDays[d.TransitTime]; ok {
            q.TransitDays = &days
        }
        quotes = append(quotes, q)
    }
    return quotes, nil
}

func orUSD(currency string) string {
    if currency == "" {
        return "USD"
    }
    return currency
}
