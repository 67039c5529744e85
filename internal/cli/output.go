package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"raffledash/internal/models"
	"raffledash/internal/raffle"
)

const timeLayout = "2006-01-02 15:04"

// criteriaFlags binds the filter flags shared by summary and owners
type criteriaFlags struct {
	start    string
	end      string
	creator  string
	minFloor string
}

func (f *criteriaFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "only raffles starting at or after this date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&f.end, "end", "", "only raffles starting at or before this date")
	cmd.Flags().StringVar(&f.creator, "creator", "", "creator address substring, case-insensitive")
	cmd.Flags().StringVar(&f.minFloor, "min-floor", "", "minimum floor price")
}

func (f *criteriaFlags) criteria() (raffle.Criteria, error) {
	q := url.Values{}
	q.Set(raffle.ParamStart, f.start)
	q.Set(raffle.ParamEnd, f.end)
	q.Set(raffle.ParamCreator, f.creator)
	q.Set(raffle.ParamMinFloor, f.minFloor)

	c, err := raffle.ParseCriteria(q)
	if err != nil {
		return raffle.Criteria{}, usageError("invalid filter", err)
	}
	return c, nil
}

func describeCriteria(c raffle.Criteria) string {
	if c.IsZero() {
		return "none"
	}
	return c.Values().Encode()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(timeLayout)
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func joinTickets(t models.Tickets) string {
	if len(t) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(t))
	for _, n := range t {
		parts = append(parts, strconv.Itoa(n))
	}
	return strings.Join(parts, ",")
}

// writeResult prints the filtered raffles as a table followed by the summary
func writeResult(w io.Writer, res raffle.Result) error {
	if len(res.Raffles) == 0 {
		fmt.Fprintln(w, "No raffles match.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "START\tNAME\tCREATOR\tFLOOR")
		for _, r := range res.Raffles {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", formatTime(r.StartTime), dash(r.Name), dash(r.Creator), dash(r.FloorPrice))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\nRaffles: %d\nTotal floor price: %s\n", res.Summary.Count, res.Summary.FloorPriceDisplay())
	return err
}

type resultJSON struct {
	Criteria        string          `json:"criteria"`
	Count           int             `json:"count"`
	TotalFloorPrice string          `json:"totalFloorPrice"`
	Raffles         []models.Raffle `json:"raffles"`
}

func writeResultJSON(w io.Writer, res raffle.Result) error {
	return writeJSON(w, resultJSON{
		Criteria:        res.Criteria.Values().Encode(),
		Count:           res.Summary.Count,
		TotalFloorPrice: res.Summary.FloorPriceDisplay(),
		Raffles:         res.Raffles,
	})
}

func writeBuyers(w io.Writer, buyers []models.Buyer, s raffle.BuyerSummary) error {
	if len(buyers) == 0 {
		fmt.Fprintln(w, "No tickets sold yet.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "BUYER\tTICKETS\tPURCHASED")
		for _, b := range buyers {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", dash(b.Buyer), joinTickets(b.Tickets), formatTime(b.CreatedAt))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\nPurchasers: %d\nTickets: %d\n", s.Purchasers, s.Tickets)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
