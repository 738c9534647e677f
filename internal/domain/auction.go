package domain

// AuctionRecord represents one sellable listing from the remote catalog.
// Corresponds to the auctions table in PostgreSQL.
type AuctionRecord struct {
	UUID      string // PRIMARY KEY, immutable, assigned by the remote catalog
	ItemName  string // display name
	Tier      Tier   // rarity tier
	Price     int64  // asking price in coins
	BIN       bool   // fixed-price ("buy it now") listing
	ItemBytes string // opaque serialized item payload, consumed only by valuation
	Start     int64  // listing start, epoch millis
	End       int64  // listing end, epoch millis
	Seller    string // seller identifier
	CreatedAt int64  // record creation timestamp (ms), set by storage
}

// Tier is the rarity tier of an item, ordered from common to mythic.
// Unknown tier strings from the feed are carried verbatim and ordered last.
type Tier string

// Known rarity tiers, in ascending order.
const (
	TierCommon    Tier = "COMMON"
	TierUncommon  Tier = "UNCOMMON"
	TierRare      Tier = "RARE"
	TierEpic      Tier = "EPIC"
	TierLegendary Tier = "LEGENDARY"
	TierMythic    Tier = "MYTHIC"
)

var tierOrder = map[Tier]int{
	TierCommon:    0,
	TierUncommon:  1,
	TierRare:      2,
	TierEpic:      3,
	TierLegendary: 4,
	TierMythic:    5,
}

// Rank returns the ordering rank of the tier. Unknown tiers rank after
// all known ones.
func (t Tier) Rank() int {
	if r, ok := tierOrder[t]; ok {
		return r
	}
	return len(tierOrder)
}
