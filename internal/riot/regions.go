package riot

import "strings"

// Region is a platform routing value for region-scoped endpoints.
type Region string

const (
	RegionEUW Region = "EUW1"
	RegionEUN Region = "EUN1"
	RegionNA  Region = "NA1"
	RegionKR  Region = "KR"
	RegionOCE Region = "OC1"
)

// SupportedRegions is the set of regions the tracker reconciles every cycle.
var SupportedRegions = []Region{RegionEUW, RegionEUN, RegionNA, RegionKR, RegionOCE}

// RoutingRegion is the fixed regional route for account-v1 lookups,
// independent of the player's home region.
const RoutingRegion = "europe"

// PrimaryRegion is the only region whose accounts get a lolpros profile
// lookup during enrichment.
const PrimaryRegion = RegionEUW

func (r Region) PlatformHost() string {
	return strings.ToLower(string(r)) + ".api.riotgames.com"
}

func RegionalHost() string {
	return RoutingRegion + ".api.riotgames.com"
}
