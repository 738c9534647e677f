package hypixel

import "encoding/base64"

// PageMetadata is the pagination header of the auction catalog.
type PageMetadata struct {
	TotalPages    int
	TotalAuctions int
}

// AuctionPage is one page of the active auction catalog.
type AuctionPage struct {
	Success       bool         `json:"success"`
	Cause         string       `json:"cause,omitempty"`
	Page          int          `json:"page"`
	TotalPages    int          `json:"totalPages"`
	TotalAuctions int          `json:"totalAuctions"`
	Auctions      []RawAuction `json:"auctions"`
}

// RawAuction is one auction entry as returned by the API. Fields are
// kept in wire shape; validation and conversion happen downstream.
type RawAuction struct {
	UUID        string `json:"uuid"`
	Auctioneer  string `json:"auctioneer"`
	ItemName    string `json:"item_name"`
	Tier        string `json:"tier"`
	StartingBid int64  `json:"starting_bid"`
	BIN         bool   `json:"bin"`
	Claimed     bool   `json:"claimed"`
	ItemBytes   string `json:"item_bytes"`
	Start       int64  `json:"start"`
	End         int64  `json:"end"`
}

// Valid reports whether the entry carries the fields the pipeline
// depends on: a uuid, a positive price and decodable item bytes.
func (a RawAuction) Valid() bool {
	if a.UUID == "" || a.StartingBid <= 0 || a.ItemBytes == "" {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(a.ItemBytes)
	return err == nil
}

// endedResponse is the wire shape of the ended-auctions feed.
type endedResponse struct {
	Success  bool           `json:"success"`
	Cause    string         `json:"cause,omitempty"`
	Auctions []EndedAuction `json:"auctions"`
}

// EndedAuction is one entry of the ended-auctions feed.
type EndedAuction struct {
	AuctionID string `json:"auction_id"`
	UUID      string `json:"uuid"`
}

// ID returns the auction identifier, falling back to uuid for feeds
// that omit auction_id.
func (e EndedAuction) ID() string {
	if e.AuctionID != "" {
		return e.AuctionID
	}
	return e.UUID
}
