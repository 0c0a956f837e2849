package carrier

import (
    "context"
    "errors"
    "fmt"
    "log"

    "golang.org/x/sync/errgroup"

    "shipvox/internal/rate"
)

// Query describes one shipment to be rated across carriers. Weight is
// pounds, dimensions are inches, per both carrier rating APIs.
type Query struct {
    OriginZip      string
    DestinationZip string
    WeightLb       float64
    LengthIn       float64
    WidthIn        float64
    HeightIn       float64
}

// RateFetcher is implemented by each carrier rate client.
type RateFetcher interface {
    Carrier() string
    FetchRates(ctx context.Context, q Query) ([]rate.RawRateQuote, error)
}

// ErrCarrierUnavailable wraps transport-level carrier failures so the
// API layer can tell them apart from an empty rate result.
var ErrCarrierUnavailable = errors.New("carrier unavailable")

// Service fans one rate query out to every configured carrier and
// collects whatever quotes come back. A failed carrier loses its own
// quotes, never the whole comparison; quotes keep the fetcher
// declaration order so downstream tie-breaks stay deterministic.
type Service struct {
    fetchers []RateFetcher
}

func NewService(fetchers ...RateFetcher) *Service {
    return &Service{fetchers: fetchers}
}

// CollectQuotes returns the surviving quotes and the number of carriers
// whose calls failed outright.
func (s *Service) CollectQuotes(ctx context.Context, q Query) ([]rate.RawRateQuote, int) {
    results := make([][]rate.RawRateQuote, len(s.fetchers))
    errs := make([]error, len(s.fetchers))

    // A plain Group rather than WithContext: one failed carrier must
    // not cancel the others' in-flight requests.
    var g errgroup.Group
    for i, f := range s.fetchers {
        i, f := i, f
        g.Go(func() error {
            var err error
            if results[i], err = f.FetchRates(ctx, q); err != nil {
                log.Printf("%s rate fetch failed: %v", f.Carrier(), err)
                errs[i] = err
                return fmt.Errorf("%s: %w", f.Carrier(), err)
            }
            return nil
        })
    }
    if err := g.Wait(); err != nil {
        log.Printf("rate fan-out degraded: %v", err)
    }

    var quotes []rate.RawRateQuote
    failed := 0
    for i := range s.fetchers {
        if errs[i] != nil {
            failed++
            continue
        }
        quotes = append(quotes, results[i]...)
    }
    return quotes, failed
}
