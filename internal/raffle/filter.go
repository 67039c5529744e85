package raffle

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"raffledash/internal/models"
)

// Criteria are the user-supplied filters of the list view. Zero value matches
// every raffle that is not deleted.
type Criteria struct {
	StartDate     *time.Time
	EndDate       *time.Time
	Creator       string
	MinFloorPrice *decimal.Decimal
}

// IsZero reports whether no criterion is set
func (c Criteria) IsZero() bool {
	return c.StartDate == nil && c.EndDate == nil && c.Creator == "" && c.MinFloorPrice == nil
}

// Filter returns the raffles matching c, in input order. The input is never
// modified and the result is never nil.
func Filter(raffles []models.Raffle, c Criteria) []models.Raffle {
	fold := cases.Fold()
	needle := fold.String(c.Creator)

	filtered := make([]models.Raffle, 0, len(raffles))
	for _, r := range raffles {
		if r.IsDeleted {
			continue
		}
		if c.StartDate != nil && r.StartTime.Before(*c.StartDate) {
			continue
		}
		if c.EndDate != nil && r.StartTime.After(*c.EndDate) {
			continue
		}
		if needle != "" && !strings.Contains(fold.String(r.Creator), needle) {
			continue
		}
		if c.MinFloorPrice != nil {
			price, ok := ParseFloorPrice(r.FloorPrice)
			if !ok || price.LessThan(*c.MinFloorPrice) {
				continue
			}
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// SortByStartDesc sorts raffles most recent first. Ties keep their order.
func SortByStartDesc(raffles []models.Raffle) {
	sort.SliceStable(raffles, func(i, j int) bool {
		return raffles[i].StartTime.After(raffles[j].StartTime)
	})
}
