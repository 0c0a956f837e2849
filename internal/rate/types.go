package rate

import "github.com/shopspring/decimal"

// RawRateQuote is one carrier-returned service option, already parsed
// out of the carrier's wire format. Charges are decimals; TransitDays is
// nil when the carrier did not report an estimate.
type RawRateQuote struct {
    Carrier     string
    ServiceName string
    ServiceCode string
    BaseCharge  decimal.Decimal
    TotalCharge decimal.Decimal
    Currency    string
    TransitDays *int
    Guaranteed  bool
}

// RateOption is a normalized rate option ready for comparison.
type RateOption struct {
    Carrier     string
    ServiceName string
    Tier        string
    TotalCost   decimal.Decimal
    Currency    string
    TransitDays *int
}

// ComparisonResult holds the two selections plus the full listing sorted
// ascending by total cost. Cheapest and FastestReasonable are always
// members of Options; FastestReasonable equals Cheapest when no option
// clears the price ceiling with a known transit time.
type ComparisonResult struct {
    Cheapest          RateOption
    FastestReasonable RateOption
    Options           []RateOption
}
