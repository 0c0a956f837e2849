package carrier

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/shopspring/decimal"

    "shipvox/internal/rate"
)

type stubFetcher struct {
    name   string
    quotes []rate.RawRateQuote
    err    error
}

func (s *stubFetcher) Carrier() string { return s.name }

func (s *stubFetcher) FetchRates(ctx context.Context, q Query) ([]rate.RawRateQuote, error) {
    return s.quotes, s.err
}

func TestCollectQuotesMergesCarriers(t *testing.T) {
    fedex := &stubFetcher{name: "FedEx", quotes: []rate.RawRateQuote{
        {Carrier: "FedEx", ServiceName: "FEDEX_GROUND", TotalCharge: decimal.RequireFromString("12.00")},
    }}
    ups := &stubFetcher{name: "UPS", quotes: []rate.RawRateQuote{
        {Carrier: "UPS", ServiceName: "UPS Ground", TotalCharge: decimal.RequireFromString("12.85")},
    }}

    quotes, failed := NewService(fedex, ups).CollectQuotes(context.Background(), Query{})
    if failed != 0 {
        t.Fatalf("expected 0 failures, got %d", failed)
    }
    if len(quotes) != 2 {
        t.Fatalf("expected 2 quotes, got %d", len(quotes))
    }
    // Fetcher declaration order survives the fan-out.
    if quotes[0].Carrier != "FedEx" || quotes[1].Carrier != "UPS" {
        t.Fatalf("unexpected quote order: %+v", quotes)
    }
}

func TestCollectQuotesToleratesPartialFailure(t *testing.T) {
    fedex := &stubFetcher{name: "FedEx", err: errors.New("timeout")}
    ups := &stubFetcher{name: "UPS", quotes: []rate.RawRateQuote{
        {Carrier: "UPS", ServiceName: "UPS Ground", TotalCharge: decimal.RequireFromString("12.85")},
    }}

    quotes, failed := NewService(fedex, ups).CollectQuotes(context.Background(), Query{})
    if failed != 1 {
        t.Fatalf("expected 1 failure, got %d", failed)
    }
    if len(quotes) != 1 || quotes[0].Carrier != "UPS" {
        t.Fatalf("surviving quotes wrong: %+v", quotes)
    }
}

type slowFetcher struct {
    name   string
    delay  time.Duration
    quotes []rate.RawRateQuote
}

func (s *slowFetcher) Carrier() string { return s.name }

func (s *slowFetcher) FetchRates(ctx context.Context, q Query) ([]rate.RawRateQuote, error) {
    select {
    case <-time.After(s.delay):
        return s.quotes, nil
    case <-ctx.Done():
        return nil, ctx.Err()
    }
}

func TestCollectQuotesFailureDoesNotCancelSiblings(t *testing.T) {
    fedex := &stubFetcher{name: "FedEx", err: errors.New("down")}
    ups := &slowFetcher{name: "UPS", delay: 50 * time.Millisecond, quotes: []rate.RawRateQuote{
        {Carrier: "UPS", ServiceName: "UPS Ground", TotalCharge: decimal.RequireFromString("12.85")},
    }}

    quotes, failed := NewService(fedex, ups).CollectQuotes(context.Background(), Query{})
    if failed != 1 {
        t.Fatalf("expected 1 failure, got %d", failed)
    }
    if len(quotes) != 1 || quotes[0].Carrier != "UPS" {
        t.Fatalf("slow carrier should still report its quotes: %+v", quotes)
    }
}

func TestCollectQuotesAllFailed(t *testing.T) {
    fedex := &stubFetcher{name: "FedEx", err: errors.New("down")}
    ups := &stubFetcher{name: "UPS", err: errors.New("down")}

    quotes, failed := NewService(fedex, ups).CollectQuotes(context.Background(), Query{})
    if failed != 2 || len(quotes) != 0 {
        t.Fatalf("expected total failure, got %d quotes / %d failed", len(quotes), failed)
    }
}
