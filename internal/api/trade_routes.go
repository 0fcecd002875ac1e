package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/APWalter/trade-journal/internal/models"
	"github.com/APWalter/trade-journal/internal/store"
)

type tradeJSON struct {
	ID             string    `json:"id"`
	AccountNumber  string    `json:"accountNumber"`
	Instrument     string    `json:"instrument"`
	Quantity       float64   `json:"quantity"`
	EntryPrice     float64   `json:"entryPrice"`
	ClosePrice     float64   `json:"closePrice"`
	EntryDate      time.Time `json:"entryDate"`
	CloseDate      time.Time `json:"closeDate"`
	Side           string    `json:"side"`
	PnL            float64   `json:"pnl"`
	Commission     float64   `json:"commission"`
	TimeInPosition int64     `json:"timeInPosition"`
	Comment        string    `json:"comment,omitempty"`
	Tags           []string  `json:"tags"`
}

func toTradeJSON(t *models.Trade) tradeJSON {
	return tradeJSON{
		ID: t.ID, AccountNumber: t.AccountNumber,
		Instrument: t.Instrument, Quantity: t.Quantity,
		EntryPrice: t.EntryPrice, ClosePrice: t.ClosePrice,
		EntryDate: t.EntryDate, CloseDate: t.CloseDate,
		Side: string(t.Side), PnL: t.PnL, Commission: t.Commission,
		TimeInPosition: t.TimeInPosition,
		Comment:        t.Comment, Tags: t.Tags,
	}
}

func parseLimit(r *http.Request, defaultLimit int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxQueryLimit {
		return maxQueryLimit
	}
	return n
}

func parseDate(r *http.Request, key string) (time.Time, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return time.Time{}, true
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	from, ok := parseDate(r, "from")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
		return
	}
	to, ok := parseDate(r, "to")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
		return
	}

	filter := store.TradeFilter{
		UserID:        s.userID,
		AccountNumber: r.URL.Query().Get("account"),
		Instrument:    r.URL.Query().Get("instrument"),
		Side:          r.URL.Query().Get("side"),
		StartDate:     from,
		EndDate:       to,
		Limit:         parseLimit(r, 100),
	}

	trades, err := s.store.GetTrades(r.Context(), filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to fetch trades")
		writeError(w, http.StatusInternalServerError, "failed to fetch trades")
		return
	}

	out := make([]tradeJSON, len(trades))
	for i := range trades {
		out[i] = toTradeJSON(&trades[i])
	}
	writeJSON(w, http.StatusOK, out)
}
