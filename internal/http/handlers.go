package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"homespend/internal/amqp"
	"homespend/internal/core"
	"homespend/internal/etl"
	"homespend/internal/storage"
)

type kpiResponse struct {
	core.KPISummary
	LastRefresh *storage.RefreshRecord `json:"last_refresh,omitempty"`
}

type apiTransaction struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Responsible string  `json:"responsible"`
	Card        string  `json:"card,omitempty"`
}

type transactionsResponse struct {
	Transactions []apiTransaction       `json:"transactions"`
	Count        int                    `json:"count"`
	LastRefresh  *storage.RefreshRecord `json:"last_refresh,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Payload(map[string]string{"status": "ok"}).Write(w)
}

// handleReady reports ready once the snapshot store answers. A store with no
// refresh yet is still ready, it just serves empty data.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	_, err := s.repo.LatestRefresh(r.Context())
	if err != nil && !errors.Is(err, storage.ErrNoRefresh) {
		slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
		ServiceUnavailableError("snapshot store unavailable").Write(w)
		return
	}
	NewJSONResponse().Payload(map[string]string{"status": "ready"}).Write(w)
}

// handleKPIs computes the KPI summary for the current month from the stored
// snapshot. Results are cached per snapshot version and month, so a refresh
// invalidates by changing the key rather than by purging.
func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}

	ctx := r.Context()

	rec, haveRefresh, err := s.latestRefresh(r)
	if err != nil {
		InternalServerError("failed to read refresh state").Write(w)
		return
	}

	now := time.Now().In(s.loc)
	key := fmt.Sprintf("%d:%04d-%02d", rec.RefreshedAt.Unix(), now.Year(), now.Month())

	if kpis, ok := s.kpiCache.Get(key); ok {
		s.writeKPIs(w, kpis, rec, haveRefresh)
		return
	}

	txs, err := s.repo.ListTransactions(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list transactions", "error", err)
		InternalServerError("failed to load snapshot").Write(w)
		return
	}

	kpis := etl.CalculateKPIs(txs, now)
	s.kpiCache.Set(key, kpis)

	s.writeKPIs(w, kpis, rec, haveRefresh)
}

func (s *Server) writeKPIs(w http.ResponseWriter, kpis core.KPISummary, rec storage.RefreshRecord, haveRefresh bool) {
	resp := kpiResponse{KPISummary: kpis}
	if haveRefresh {
		resp.LastRefresh = &rec
	}
	NewJSONResponse().Payload(resp).Write(w)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}

	ctx := r.Context()

	txs, err := s.repo.ListTransactions(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list transactions", "error", err)
		InternalServerError("failed to load snapshot").Write(w)
		return
	}

	rec, haveRefresh, err := s.latestRefresh(r)
	if err != nil {
		InternalServerError("failed to read refresh state").Write(w)
		return
	}

	out := make([]apiTransaction, 0, len(txs))
	for _, t := range txs {
		out = append(out, apiTransaction{
			Date:        t.Date.Format("2006-01-02"),
			Description: t.Description,
			Amount:      t.Amount,
			Responsible: t.Responsible,
			Card:        t.Card,
		})
	}

	resp := transactionsResponse{
		Transactions: out,
		Count:        len(out),
	}
	if haveRefresh {
		resp.LastRefresh = &rec
	}
	NewJSONResponse().Payload(resp).Write(w)
}

// handleRefresh queues a snapshot refresh for the worker. Returns 202 once
// the request is on the broker; the actual refresh happens asynchronously.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}

	if s.requester == nil {
		ServiceUnavailableError("refresh requests are not configured").Write(w)
		return
	}

	ctx := r.Context()
	msg := amqp.NewRefreshRequestMessage("manual", extractClientIP(r))

	if err := s.requester.PublishRefreshRequest(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish refresh request", "error", err)
		ServiceUnavailableError("failed to queue refresh request").Write(w)
		return
	}

	NewJSONResponse().
		Status(http.StatusAccepted).
		Payload(map[string]string{"status": "accepted"}).
		Write(w)
}

// latestRefresh fetches the refresh record, treating "no refresh yet" as an
// empty record rather than an error.
func (s *Server) latestRefresh(r *http.Request) (storage.RefreshRecord, bool, error) {
	rec, err := s.repo.LatestRefresh(r.Context())
	if errors.Is(err, storage.ErrNoRefresh) {
		return storage.RefreshRecord{}, false, nil
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to read latest refresh", "error", err)
		return storage.RefreshRecord{}, false, err
	}
	return rec, true, nil
}
