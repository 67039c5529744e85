package raffle

import (
	"github.com/shopspring/decimal"

	"raffledash/internal/models"
)

// Summary holds the totals shown under the raffle list
type Summary struct {
	Count           int             `json:"count"`
	TotalFloorPrice decimal.Decimal `json:"totalFloorPrice"`
}

// FloorPriceDisplay formats the total floor price with two decimals
func (s Summary) FloorPriceDisplay() string {
	return s.TotalFloorPrice.StringFixed(2)
}

// Summarize counts raffles and sums their floor prices. Unparsable prices add zero.
func Summarize(raffles []models.Raffle) Summary {
	total := decimal.Zero
	for _, r := range raffles {
		if price, ok := ParseFloorPrice(r.FloorPrice); ok {
			total = total.Add(price)
		}
	}
	return Summary{Count: len(raffles), TotalFloorPrice: total}
}

// OwnerAddresses returns the creator of each raffle, in order
func OwnerAddresses(raffles []models.Raffle) []string {
	owners := make([]string, 0, len(raffles))
	for _, r := range raffles {
		owners = append(owners, r.Creator)
	}
	return owners
}

// BuyerSummary holds the totals shown on a raffle's buyer page
type BuyerSummary struct {
	Purchasers int `json:"purchasers"`
	Tickets    int `json:"tickets"`
}

// ScopeBuyers keeps the purchase records that belong to raffleID. The store is
// not trusted to have scoped the result already.
func ScopeBuyers(buyers []models.Buyer, raffleID string) []models.Buyer {
	scoped := make([]models.Buyer, 0, len(buyers))
	for _, b := range buyers {
		if b.RaffleID == raffleID {
			scoped = append(scoped, b)
		}
	}
	return scoped
}

// SummarizeBuyers counts purchase records and the tickets across them
func SummarizeBuyers(buyers []models.Buyer) BuyerSummary {
	s := BuyerSummary{Purchasers: len(buyers)}
	for _, b := range buyers {
		s.Tickets += len(b.Tickets)
	}
	return s
}
