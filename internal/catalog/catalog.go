// Package catalog defines the fixed universe of tracked skins. The basket
// favors liquid, widely recognized items with enough price movement to be
// investable, spread across weapon categories and rarity tiers.
package catalog

// Entry is one tracked skin before it gets a database identity.
type Entry struct {
	Name     string
	Rarity   string
	Category string
	Thesis   string
}

// Rarity tiers in ascending order of scarcity.
const (
	RarityConsumer   = "Consumer"
	RarityIndustrial = "Industrial"
	RarityMilSpec    = "Mil-Spec"
	RarityRestricted = "Restricted"
	RarityClassified = "Classified"
	RarityCovert     = "Covert"
	RarityContraband = "Contraband"
)

// Universe is the tracked basket. Items are appended, never removed, so
// snapshot history stays attached.
var Universe = []Entry{
	{"AK-47 | Redline (Field-Tested)", RarityClassified, "Rifle",
		"Benchmark liquid rifle skin; deep order book and steady collector demand."},
	{"AK-47 | Asiimov (Field-Tested)", RarityCovert, "Rifle",
		"Popular modern finish with strong recognition from the AWP line."},
	{"AK-47 | Slate (Factory New)", RarityRestricted, "Rifle",
		"High-volume budget favorite; tracks entry-level demand."},
	{"M4A4 | Asiimov (Field-Tested)", RarityCovert, "Rifle",
		"Discontinued drop pool; supply slowly tightens while demand holds."},
	{"M4A1-S | Printstream (Field-Tested)", RarityCovert, "Rifle",
		"Flagship pearlescent finish with persistent premium demand."},
	{"M4A1-S | Hyper Beast (Field-Tested)", RarityCovert, "Rifle",
		"Recognizable artwork series with broad mid-market liquidity."},
	{"AWP | Asiimov (Field-Tested)", RarityCovert, "Sniper",
		"The reference AWP skin; effectively an index for the whole market."},
	{"AWP | Wildfire (Field-Tested)", RarityCovert, "Sniper",
		"Strong visual identity, held up well through case reprints."},
	{"AWP | Atheris (Field-Tested)", RarityRestricted, "Sniper",
		"Liquid low-tier AWP; proxy for casual-player spending."},
	{"Desert Eagle | Printstream (Field-Tested)", RarityCovert, "Pistol",
		"Premium pistol line rides the Printstream brand."},
	{"Desert Eagle | Blaze (Factory New)", RarityRestricted, "Pistol",
		"Old-generation finish with shrinking float supply."},
	{"USP-S | Kill Confirmed (Field-Tested)", RarityCovert, "Pistol",
		"Top-tier USP artwork; stable collector floor."},
	{"USP-S | Printstream (Minimal Wear)", RarityCovert, "Pistol",
		"Joint momentum with the rifle and Deagle Printstreams."},
	{"Glock-18 | Fade (Factory New)", RarityRestricted, "Pistol",
		"Classic fade pattern; supply fixed since early case pools."},
	{"P250 | See Ya Later (Field-Tested)", RarityClassified, "Pistol",
		"Mid-tier liquidity bellwether for pistol demand."},
	{"MP9 | Hydra (Factory New)", RarityClassified, "SMG",
		"Thinly supplied SMG; amplifies market-wide swings."},
	{"P90 | Asiimov (Field-Tested)", RarityCovert, "SMG",
		"Budget entry into the Asiimov family."},
	{"MAC-10 | Neon Rider (Field-Tested)", RarityClassified, "SMG",
		"Bright finish popular with volume traders."},
	{"Galil AR | Chatterbox (Field-Tested)", RarityCovert, "Rifle",
		"Chroma-era covert with slowly decaying supply."},
	{"FAMAS | Commemoration (Field-Tested)", RarityCovert, "Rifle",
		"Tournament-linked finish; event-driven demand spikes."},
	{"SG 553 | Integrale (Factory New)", RarityRestricted, "Rifle",
		"Cheap Factory New supply; sensitive to meta shifts."},
	{"SSG 08 | Blood in the Water (Field-Tested)", RarityCovert, "Sniper",
		"Scout flagship; long-run appreciation from fixed supply."},
	{"Tec-9 | Nuclear Threat (Factory New)", RarityRestricted, "Pistol",
		"Nuke Collection scarcity play; low volume, high conviction."},
	{"M4A4 | Howl (Field-Tested)", RarityContraband, "Rifle",
		"Only contraband rifle in the game; absolute supply cap."},
	{"P2000 | Amber Fade (Factory New)", RarityIndustrial, "Pistol",
		"Low-tier fade; tracks the bottom of the market."},
}

// ByName indexes the universe for ingestion lookups.
func ByName() map[string]Entry {
	m := make(map[string]Entry, len(Universe))
	for _, e := range Universe {
		m[e.Name] = e
	}
	return m
}

// Names returns the tracked names in catalog order.
func Names() []string {
	names := make([]string, len(Universe))
	for i, e := range Universe {
		names[i] = e.Name
	}
	return names
}
