package ledger

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/warungledger/warungledger/internal/platform/httpx"
	"github.com/warungledger/warungledger/internal/shared"
)

// Handler serves bookkeeping endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the ledger handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

type entryResponse struct {
	ID        int64     `json:"id"`
	TxRef     string    `json:"tx_ref"`
	TxDate    time.Time `json:"tx_date"`
	Account   string    `json:"account"`
	Direction Direction `json:"direction"`
	Amount    int64     `json:"amount"`
	Note      *string   `json:"note,omitempty"`
}

type trialBalanceRow struct {
	Account string `json:"account"`
	Debit   int64  `json:"debit"`
	Credit  int64  `json:"credit"`
	Balance int64  `json:"balance"`
}

type trialBalanceResponse struct {
	Rows        []trialBalanceRow `json:"rows"`
	TotalDebit  int64             `json:"total_debit"`
	TotalCredit int64             `json:"total_credit"`
	Balanced    bool              `json:"balanced"`
}

// ListEntries handles GET /bookkeeping/ledger.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	filter := EntryFilter{Limit: shared.LimitParam(r, 200, 2000)}
	var ok bool
	if filter.From, filter.To, ok = dateRange(w, r); !ok {
		return
	}
	entries, err := h.service.ListEntries(r.Context(), filter)
	if err != nil {
		h.logger.Error("list ledger", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse{
			ID:        e.ID,
			TxRef:     e.TxRef,
			TxDate:    e.TxDate,
			Account:   e.Account,
			Direction: e.Direction,
			Amount:    int64(e.Amount),
			Note:      e.Note,
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}

// TrialBalance handles GET /bookkeeping/trial-balance.
func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	var filter EntryFilter
	var ok bool
	if filter.From, filter.To, ok = dateRange(w, r); !ok {
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), filter)
	if err != nil {
		h.logger.Error("trial balance", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	resp := trialBalanceResponse{
		Rows:        make([]trialBalanceRow, 0, len(tb.Rows)),
		TotalDebit:  int64(tb.TotalDebit),
		TotalCredit: int64(tb.TotalCredit),
		Balanced:    tb.Balanced(),
	}
	for _, row := range tb.Rows {
		resp.Rows = append(resp.Rows, trialBalanceRow{
			Account: row.Account,
			Debit:   int64(row.Debit),
			Credit:  int64(row.Credit),
			Balance: int64(row.Balance()),
		})
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// dateRange parses optional start_date/end_date query params as whole days.
func dateRange(w http.ResponseWriter, r *http.Request) (*time.Time, *time.Time, bool) {
	var from, to *time.Time
	if raw := r.URL.Query().Get("start_date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "start_date must be YYYY-MM-DD")
			return nil, nil, false
		}
		from = &day
	}
	if raw := r.URL.Query().Get("end_date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "end_date must be YYYY-MM-DD")
			return nil, nil, false
		}
		end := day.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	return from, to, true
}
