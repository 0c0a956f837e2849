package rate

import (
    "strings"
    "sync"
)

// Normalizer resolves (carrier, service name, service code) triples to
// canonical tiers. Resolution is a fixed chain tried in order: runtime
// override table, exact code lookup in the static carrier table,
// substring scan over the same table's identifiers, then the lowercased
// raw name itself. Normalization never fails: an unmapped service
// becomes its own non-comparable tier.
//
// The override table is the only mutable state. AddMapping takes the
// write lock; Normalize only ever takes the read lock, so a Normalizer
// is safe to share across concurrent comparisons.
type Normalizer struct {
    mu        sync.RWMutex
    overrides map[string]string
}

func NewNormalizer() *Normalizer {
    return &Normalizer{overrides: make(map[string]string)}
}

// AddMapping installs an override for (carrier, serviceName). The
// mapping lasts for the lifetime of the process; durable persistence is
// the caller's responsibility.
func (n *Normalizer) AddMapping(carrier, serviceName, tier string) {
    key := overrideKey(carrier, serviceName)
    n.mu.Lock()
    n.overrides[key] = tier
    n.mu.Unlock()
}

// Normalize returns the canonical tier for a carrier service. The
// serviceCode may be empty; the code lookup step is skipped then.
func (n *Normalizer) Normalize(carrier, serviceName, serviceCode string) string {
    cl := strings.ToLower(strings.TrimSpace(carrier))
    name := strings.ToLower(strings.TrimSpace(serviceName))

    if tier, ok := n.fromOverride(cl, name); ok {
        return tier
    }
    table := carrierTable(cl)
    if tier, ok := fromCode(table, serviceCode); ok {
        return tier
    }
    if tier, ok := fromNameScan(table, name); ok {
        return tier
    }
    return name
}

func (n *Normalizer) fromOverride(carrier, name string) (string, bool) {
    n.mu.RLock()
    tier, ok := n.overrides[carrier+"|"+name]
    n.mu.RUnlock()
    return tier, ok
}

func fromCode(table []serviceMapping, code string) (string, bool) {
    if strings.TrimSpace(code) == "" {
        return "", false
    }
    for _, m := range table {
        if strings.EqualFold(m.Code, code) {
            return m.Tier, true
        }
    }
    return "", false
}

// fromNameScan checks whether any known service identifier appears
// inside the raw name. First match in table order wins. Short numeric
// codes (UPS) are excluded from the scan; they would false-match digits
// in arbitrary service names.
func fromNameScan(table []serviceMapping, name string) (string, bool) {
    for _, m := range table {
        if len(m.Code) > 3 && strings.Contains(name, strings.ToLower(m.Code)) {
            return m.Tier, true
        }
        for _, tok := range m.Tokens {
            if strings.Contains(name, tok) {
                return m.Tier, true
            }
        }
    }
    return "", false
}

func overrideKey(carrier, serviceName string) string {
    return strings.ToLower(strings.TrimSpace(carrier)) + "|" + strings.ToLower(strings.TrimSpace(serviceName))
}
