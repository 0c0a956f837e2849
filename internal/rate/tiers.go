package rate

// Canonical service tiers, slowest to fastest. The declaration order is
// the comparison order and must not change: ServiceLevel indexes into it.
const (
    TierGround            = "Ground"
    TierEconomy           = "Economy"
    Tier2Day              = "2Day"
    TierExpress           = "Express"
    TierOvernight         = "Overnight"
    TierPriorityOvernight = "PriorityOvernight"
    TierFirstOvernight    = "FirstOvernight"
)

var tierOrder = []string{
    TierGround,
    TierEconomy,
    Tier2Day,
    TierExpress,
    TierOvernight,
    TierPriorityOvernight,
    TierFirstOvernight,
}

// ServiceLevel returns the zero-based speed index of tier within the
// canonical vocabulary, or -1 for any tier outside it.
func ServiceLevel(tier string) int {
    for i, t := range tierOrder {
        if t == tier {
            return i
        }
    }
    return -1
}

// IsFaster reports whether tier a is strictly faster than tier b.
// Unknown tiers sit at level -1, so they never win a speed comparison,
// and two unknown tiers are not faster than each other.
func IsFaster(a, b string) bool {
    return ServiceLevel(a) > ServiceLevel(b)
}
