package hypixel

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validItemBytes() string {
	return base64.StdEncoding.EncodeToString([]byte("nbt-payload"))
}

func TestClient_FetchPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/skyblock/auctions", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":       true,
			"page":          2,
			"totalPages":    32,
			"totalAuctions": 31000,
			"auctions": []map[string]interface{}{
				{
					"uuid":         "auction-1",
					"auctioneer":   "seller-1",
					"item_name":    "Aspect of the End",
					"tier":         "RARE",
					"starting_bid": 150000,
					"bin":          true,
					"claimed":      false,
					"item_bytes":   validItemBytes(),
					"start":        1700000000000,
					"end":          1700000600000,
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	page, err := client.FetchPage(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 32, page.TotalPages)
	assert.Equal(t, 31000, page.TotalAuctions)
	require.Len(t, page.Auctions, 1)

	a := page.Auctions[0]
	assert.Equal(t, "auction-1", a.UUID)
	assert.Equal(t, "seller-1", a.Auctioneer)
	assert.Equal(t, int64(150000), a.StartingBid)
	assert.True(t, a.BIN)
	assert.False(t, a.Claimed)
	assert.True(t, a.Valid())
}

func TestClient_Metadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "0", r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":       true,
			"page":          0,
			"totalPages":    80,
			"totalAuctions": 96000,
			"auctions":      []interface{}{},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	meta, err := client.Metadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 80, meta.TotalPages)
	assert.Equal(t, 96000, meta.TotalAuctions)
}

func TestClient_FetchPageAPIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"cause":   "Invalid API key",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.FetchPage(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestClient_FetchPageServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithMaxRetries(0))

	_, err := client.FetchPage(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestClient_SendsAPIKeyHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-key", r.Header.Get("API-Key"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":  true,
			"auctions": []interface{}{},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, WithAPIKey("secret-key"))

	_, err := client.FetchPage(context.Background(), 0)
	require.NoError(t, err)
}

func TestClient_EndedAuctions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/skyblock/auctions_ended", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"auctions": []map[string]interface{}{
				{"auction_id": "ended-1", "uuid": "uuid-1"},
				{"uuid": "uuid-2"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	ended, err := client.EndedAuctions(context.Background())
	require.NoError(t, err)
	require.Len(t, ended, 2)

	assert.Equal(t, "ended-1", ended[0].ID())
	assert.Equal(t, "uuid-2", ended[1].ID())
}

func TestRawAuction_Valid(t *testing.T) {
	valid := RawAuction{
		UUID:        "a-1",
		StartingBid: 100,
		ItemBytes:   validItemBytes(),
	}
	assert.True(t, valid.Valid())

	noUUID := valid
	noUUID.UUID = ""
	assert.False(t, noUUID.Valid())

	noBid := valid
	noBid.StartingBid = 0
	assert.False(t, noBid.Valid())

	badBytes := valid
	badBytes.ItemBytes = "not base64!!!"
	assert.False(t, badBytes.Valid())
}
