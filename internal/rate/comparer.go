package rate

import (
    "errors"
    "fmt"
    "sort"

    "github.com/shopspring/decimal"
)

// ErrNoRatesAvailable is returned by Compare for an empty quote set.
// It is the only fatal condition in the comparison core and maps to a
// user-visible "no shipping options" result, distinct from a carrier
// transport failure.
var ErrNoRatesAvailable = errors.New("no shipping rates available")

// ErrInvalidQuote flags a quote whose total charge is zero or negative,
// which would corrupt the cheapest-selection invariant.
var ErrInvalidQuote = errors.New("invalid rate quote")

// maxPriceRatio caps how much pricier the fastest-reasonable pick may
// be than the cheapest option: at most 1.5x.
var maxPriceRatio = decimal.New(15, -1)

// Comparer ranks normalized rate options across carriers.
type Comparer struct {
    normalizer *Normalizer

    // MinDaysFaster optionally requires the fastest-reasonable pick to
    // beat the cheapest option's transit estimate by at least this many
    // days (strict mode). Zero disables the gate, leaving the price
    // ceiling as the only constraint.
    MinDaysFaster int
}

func NewComparer(n *Normalizer) *Comparer {
    return &Comparer{normalizer: n}
}

// Compare normalizes every quote and produces the cheapest selection,
// the fastest-reasonable selection, and the full cost-sorted listing.
// No quote is dropped for lacking a tier mapping; unmapped services keep
// their lowercased name as a non-comparable tier.
func (c *Comparer) Compare(quotes []RawRateQuote) (*ComparisonResult, error) {
    if len(quotes) == 0 {
        return nil, ErrNoRatesAvailable
    }

    options := make([]RateOption, 0, len(quotes))
    for _, q := range quotes {
        if !q.TotalCharge.IsPositive() {
            return nil, fmt.Errorf("%w: %s %s has total charge %s", ErrInvalidQuote, q.Carrier, q.ServiceName, q.TotalCharge)
        }
        options = append(options, RateOption{
            Carrier:     q.Carrier,
            ServiceName: q.ServiceName,
            Tier:        c.normalizer.Normalize(q.Carrier, q.ServiceName, q.ServiceCode),
            TotalCost:   q.TotalCharge,
            Currency:    q.Currency,
            TransitDays: q.TransitDays,
        })
    }

    // First minimum encountered wins, preserving carrier-response order.
    cheapest := options[0]
    for _, o := range options[1:] {
        if o.TotalCost.LessThan(cheapest.TotalCost) {
            cheapest = o
        }
    }

    sorted := make([]RateOption, len(options))
    copy(sorted, options)
    sort.SliceStable(sorted, func(i, j int) bool {
        return sorted[i].TotalCost.LessThan(sorted[j].TotalCost)
    })

    return &ComparisonResult{
        Cheapest:          cheapest,
        FastestReasonable: c.fastestReasonable(options, cheapest),
        Options:           sorted,
    }, nil
}

// fastestReasonable picks the fewest-transit-days option among those
// priced within maxPriceRatio of the cheapest and carrying a known
// transit estimate, tie-breaking on lower cost. When no option
// qualifies, the cheapest option is returned so callers always get a
// usable pick.
func (c *Comparer) fastestReasonable(options []RateOption, cheapest RateOption) RateOption {
    ceiling := cheapest.TotalCost.Mul(maxPriceRatio)
    best := cheapest
    found := false
    for _, o := range options {
        if o.TransitDays == nil || o.TotalCost.GreaterThan(ceiling) {
            continue
        }
        if c.MinDaysFaster > 0 {
            if cheapest.TransitDays == nil {
                continue
            }
            if *o.TransitDays > *cheapest.TransitDays-c.MinDaysFaster {
                continue
            }
        }
        if !found || *o.TransitDays < *best.TransitDays ||
            (*o.TransitDays == *best.TransitDays && o.TotalCost.LessThan(best.TotalCost)) {
            best = o
            found = true
        }
    }
    return best
}
