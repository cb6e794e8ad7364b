package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"budgetbuddy/internal/amqp"
	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/report"
)

const alertPublishTimeout = 5 * time.Second

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]string{"templates": "ok", "store": "ok"}

	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			checks["store"] = "failed: " + err.Error()
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		}
	}
	if s.publisher == nil {
		checks["alerts"] = "disabled"
	} else {
		checks["alerts"] = "ok"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides request and security counters in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	tm := s.traceMiddleware.GetMetrics()
	sm := s.securityDetector.GetMetrics()
	rm := s.exportLimiter.GetMetrics()

	fmt.Fprintf(w, "# TYPE http_requests_total counter\nhttp_requests_total %d\n", tm.TotalRequests)
	fmt.Fprintf(w, "# TYPE http_requests_failed_total counter\nhttp_requests_failed_total %d\n", tm.FailedRequests)
	fmt.Fprintf(w, "# TYPE export_rate_limit_hits_total counter\nexport_rate_limit_hits_total %d\n", rm.TotalHits)
	fmt.Fprintf(w, "# TYPE export_rate_limit_clients gauge\nexport_rate_limit_clients %d\n", rm.ClientCount)
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\nsuspicious_requests_total %d\n", sm.SuspiciousRequests)
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\nuptime_seconds %.0f\n", time.Since(s.startedAt).Seconds())
}

// handleDashboard renders the balance page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if b := RequireGET(r); b != nil {
		b.Write(w)
		return
	}

	ctx := r.Context()
	user := s.userFrom(r)
	typ := s.txType(r)

	ov, err := s.engine.Overview(ctx, user, typ)
	if err != nil {
		s.renderFailure(w, r, user, err)
		return
	}
	s.maybeAlert(ctx, user, ov.Budget)

	data := dashboardView{
		User:      ov.Account.User,
		Balance:   ov.Card.Display(),
		Tone:      string(ov.Card.Tone),
		Type:      string(typ),
		Breakdown: newBreakdownView(typ, ov.Summary, ov.Empty, ov.Malformed),
		Budget:    newBudgetView(ov.Budget),
		Tips:      tips,
	}
	if !ov.Empty {
		data.Export = newExportView(ov.Summary)
	}

	s.render(w, r, http.StatusOK, "dashboard_page", data)
}

// handleBreakdownPartial renders the breakdown section for the type toggle.
func (s *Server) handleBreakdownPartial(w http.ResponseWriter, r *http.Request) {
	if b := RequireGET(r); b != nil {
		b.Write(w)
		return
	}

	user := s.userFrom(r)
	typ := s.txType(r)
	sum, empty, malformed, err := s.breakdown(r.Context(), user, typ)
	if err != nil {
		s.partialFailure(w, r, user, err)
		return
	}

	s.render(w, r, http.StatusOK, "breakdown", newBreakdownView(typ, sum, empty, malformed))
}

// handleBudgetPartial renders the budget status line.
func (s *Server) handleBudgetPartial(w http.ResponseWriter, r *http.Request) {
	if b := RequireGET(r); b != nil {
		b.Write(w)
		return
	}

	ctx := r.Context()
	user := s.userFrom(r)
	acct, err := s.engine.Account(ctx, user)
	if err != nil {
		s.partialFailure(w, r, user, err)
		return
	}
	st, err := s.engine.Evaluate(ctx, user, acct.Budget, s.engine.Now())
	if err != nil {
		s.partialFailure(w, r, user, err)
		return
	}
	s.maybeAlert(ctx, user, st)

	if st.Exceeded {
		NewHTMXResponse().
			TriggerBudgetExceeded(string(st.Duration), st.Over.Plain()).
			TriggerWarningNotification(st.Message()).
			Header("Content-Type", "text/html; charset=utf-8").
			Body(s.renderBytes(r, "budget", newBudgetView(st))).
			Write(w)
		return
	}
	s.render(w, r, http.StatusOK, "budget", newBudgetView(st))
}

// handleBreakdownAPI returns the chart points as JSON.
func (s *Server) handleBreakdownAPI(w http.ResponseWriter, r *http.Request) {
	if b := RequireGET(r); b != nil {
		b.Write(w)
		return
	}

	user := s.userFrom(r)
	typ := s.txType(r)
	sum, empty, _, err := s.breakdown(r.Context(), user, typ)
	if err != nil {
		status, msg := classify(err)
		s.logFailure(r, user, status, err)
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	if empty {
		writeJSON(w, http.StatusOK, []core.ChartPoint{})
		return
	}
	writeJSON(w, http.StatusOK, sum.Points())
}

func (s *Server) breakdown(ctx context.Context, user string, typ core.TxType) (report.Summary, bool, int, error) {
	loaded, err := s.engine.Load(ctx, user, typ)
	if err != nil {
		return report.Summary{}, false, 0, err
	}
	sum, err := report.Aggregate(loaded.Transactions)
	if errors.Is(err, core.ErrEmptyDataset) {
		return report.Summary{}, true, loaded.Malformed, nil
	}
	if err != nil {
		return report.Summary{}, false, 0, err
	}
	return sum, false, loaded.Malformed, nil
}

func (s *Server) txType(r *http.Request) core.TxType {
	typ, err := ParseTxType(r.URL.Query())
	if err != nil {
		requestLogger(r).WarnContext(r.Context(), "Unknown transaction type, showing expenses",
			log.FieldTxType, r.URL.Query().Get("type"))
	}
	return typ
}

// maybeAlert publishes an exceeded budget in the background. Failures are
// logged only; the page renders regardless.
func (s *Server) maybeAlert(ctx context.Context, user string, st report.BudgetStatus) {
	if !st.Active {
		return
	}
	logger := log.FromContext(ctx)
	log.NewStructuredLogger(logger).LogBudgetEvaluated(ctx, user, st.Budget.Plain(), st.Spent.Plain(), st.Exceeded)
	if s.publisher == nil || !st.Exceeded {
		return
	}

	msg := amqp.NewBudgetExceededMessage(user, st.Duration, st.Budget, st.Spent, st.Over, st.Window.Start, st.Window.End)
	pubCtx := context.WithoutCancel(ctx)

	s.alerts.Add(1)
	go func() {
		defer s.alerts.Done()
		ctx, cancel := context.WithTimeout(pubCtx, alertPublishTimeout)
		defer cancel()
		if err := s.publisher.PublishBudgetExceeded(ctx, msg); err != nil {
			logger.WarnContext(ctx, "Failed to publish budget alert",
				log.FieldUser, user,
				log.FieldError, err,
				log.FieldOperation, log.OpPublish)
		}
	}()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
