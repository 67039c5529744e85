package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"raffledash/internal/models"
	"raffledash/internal/raffle"
	"raffledash/internal/view"
)

// filterForm echoes the raw filter inputs back into the form
type filterForm struct {
	Start    string
	End      string
	Creator  string
	MinFloor string
}

func formFromQuery(q url.Values) filterForm {
	return filterForm{
		Start:    q.Get(raffle.ParamStart),
		End:      q.Get(raffle.ParamEnd),
		Creator:  q.Get(raffle.ParamCreator),
		MinFloor: q.Get(raffle.ParamMinFloor),
	}
}

type resultsData struct {
	Error   string
	Summary raffle.Summary
	Raffles []models.Raffle
}

func resultsFor(res raffle.Result) resultsData {
	return resultsData{Summary: res.Summary, Raffles: res.Raffles}
}

type indexData struct {
	Title     string
	Error     string
	ViewID    string
	Form      filterForm
	Total     int
	FetchedAt time.Time
	Results   resultsData
}

// Index fetches the raffle set once, registers it as a new view and renders
// the list. Filter edits on the page hit Results against that view.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	data := indexData{Title: "Raffle Dashboard"}

	ctx, cancel := h.fetchContext(r)
	defer cancel()

	raffles, err := h.store.ListRaffles(ctx)
	if err != nil {
		if r.Context().Err() != nil {
			// client went away mid-fetch; nothing to render
			return
		}
		slog.Error("list raffles", "error", err)
		data.Error = msgRafflesUnavailable
		h.render(w, http.StatusInternalServerError, "index.html", data)
		return
	}

	snap := raffle.NewSnapshot(raffles, h.now())
	data.ViewID = h.views.Add(snap)
	data.Total = snap.Len()
	data.FetchedAt = snap.FetchedAt()
	data.Form = formFromQuery(r.URL.Query())

	criteria, err := raffle.ParseCriteria(r.URL.Query())
	if err != nil {
		data.Results = resultsFor(snap.Derive(raffle.Criteria{}))
		data.Results.Error = criteriaMessage(err)
	} else {
		data.Results = resultsFor(snap.Derive(criteria))
	}

	slog.Debug("view registered", "view_id", data.ViewID, "raffles", snap.Len())
	h.render(w, http.StatusOK, "index.html", data)
}

// Results renders the list and summary fragment for a view. Criteria errors
// still answer 200 because htmx only swaps successful responses.
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.lookupView(w, r)
	if !ok {
		return
	}

	criteria, err := raffle.ParseCriteria(r.URL.Query())
	if err != nil {
		h.renderFragment(w, http.StatusOK, "index.html", "results", resultsData{Error: criteriaMessage(err)})
		return
	}
	h.renderFragment(w, http.StatusOK, "index.html", "results", resultsFor(snap.Derive(criteria)))
}

// Owners returns the creators of the filtered raffles, one per line
func (h *Handler) Owners(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.lookupView(w, r)
	if !ok {
		return
	}

	criteria, err := raffle.ParseCriteria(r.URL.Query())
	if err != nil {
		http.Error(w, criteriaMessage(err), http.StatusBadRequest)
		return
	}

	owners := raffle.OwnerAddresses(snap.Derive(criteria).Raffles)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, strings.Join(owners, "\n"))
}

func (h *Handler) lookupView(w http.ResponseWriter, r *http.Request) (*raffle.Snapshot, bool) {
	viewID := chi.URLParam(r, "viewId")
	snap, err := h.views.Get(viewID)
	if errors.Is(err, view.ErrViewNotFound) {
		http.Error(w, msgViewExpired, http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		slog.Error("lookup view", "view_id", viewID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return nil, false
	}
	return snap, true
}

type raffleData struct {
	Title    string
	Error    string
	RaffleID string
	Buyers   []models.Buyer
	Summary  raffle.BuyerSummary
}

// RafflePage lists the purchase records of one raffle
func (h *Handler) RafflePage(w http.ResponseWriter, r *http.Request) {
	raffleID := chi.URLParam(r, "raffleId")
	data := raffleData{Title: "Raffle " + raffleID, RaffleID: raffleID}

	ctx, cancel := h.fetchContext(r)
	defer cancel()

	buyers, err := h.store.ListBuyers(ctx, raffleID)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		slog.Error("list buyers", "raffle_id", raffleID, "error", err)
		data.Error = msgBuyersUnavailable
		h.render(w, http.StatusInternalServerError, "raffle.html", data)
		return
	}

	data.Buyers = raffle.ScopeBuyers(buyers, raffleID)
	data.Summary = raffle.SummarizeBuyers(data.Buyers)
	h.render(w, http.StatusOK, "raffle.html", data)
}
