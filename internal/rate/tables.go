package rate

// serviceMapping binds one carrier service code, plus the lowercase name
// tokens that identify it, to a canonical tier. Tables are slices, not
// maps: the substring scan returns the first match in declaration order,
// so iteration has to be stable.
type serviceMapping struct {
    Code   string
    Tokens []string
    Tier   string
}

// fedexServices follows the FedEx published service catalog. The
// overnight entries are ordered most-specific first so the token scan
// cannot resolve "first overnight" as plain "overnight".
var fedexServices = []serviceMapping{
    {Code: "FIRST_OVERNIGHT", Tokens: []string{"first_overnight", "first overnight"}, Tier: TierFirstOvernight},
    {Code: "PRIORITY_OVERNIGHT", Tokens: []string{"priority_overnight", "priority overnight"}, Tier: TierPriorityOvernight},
    {Code: "STANDARD_OVERNIGHT", Tokens: []string{"standard_overnight", "standard overnight", "overnight"}, Tier: TierOvernight},
    {Code: "FEDEX_2_DAY_AM", Tokens: []string{"2_day_am", "2day a.m."}, Tier: Tier2Day},
    {Code: "FEDEX_2_DAY", Tokens: []string{"fedex_2_day", "fedex 2day", "2day", "2 day"}, Tier: Tier2Day},
    {Code: "FEDEX_EXPRESS_SAVER", Tokens: []string{"express_saver", "express saver"}, Tier: TierEconomy},
    {Code: "GROUND_HOME_DELIVERY", Tokens: []string{"ground_home_delivery", "home delivery"}, Tier: TierGround},
    {Code: "FEDEX_GROUND", Tokens: []string{"fedex_ground", "fedex ground", "ground"}, Tier: TierGround},
}

// upsServices keys on the UPS rating service codes. UPS responses carry
// numeric codes, so each entry also lists display-name tokens for quotes
// that arrive with a name but no code. "Next Day Air" is listed after
// its Early and Saver variants because their names contain it.
var upsServices = []serviceMapping{
    {Code: "14", Tokens: []string{"next_day_air_early", "next day air early", "early a.m."}, Tier: TierFirstOvernight},
    {Code: "13", Tokens: []string{"next_day_air_saver", "next day air saver"}, Tier: TierOvernight},
    {Code: "01", Tokens: []string{"next_day_air", "next day air"}, Tier: TierPriorityOvernight},
    {Code: "59", Tokens: []string{"2nd_day_air_am", "2nd day air a.m."}, Tier: Tier2Day},
    {Code: "02", Tokens: []string{"2nd_day_air", "2nd day air", "2day", "2 day"}, Tier: Tier2Day},
    {Code: "65", Tokens: []string{"express_saver", "express saver", "worldwide saver"}, Tier: TierExpress},
    {Code: "12", Tokens: []string{"3_day_select", "3 day select", "3day"}, Tier: TierEconomy},
    {Code: "03", Tokens: []string{"ups_ground", "ups ground", "ground"}, Tier: TierGround},
}

// carrierTable returns the static table for a lowercased carrier
// identifier, or nil for carriers without one.
func carrierTable(carrier string) []serviceMapping {
    switch carrier {
    case "fedex":
        return fedexServices
    case "ups":
        return upsServices
    default:
        return nil
    }
}
