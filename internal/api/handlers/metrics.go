package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"helpdesk/internal/engine/webhooks"
)

// DispatchStats counts notification outcomes for the metrics endpoint.
type DispatchStats struct {
	attempted atomic.Int64
	delivered atomic.Int64
	notified  atomic.Int64
}

// Observe wraps n so every Notify call is counted.
func (s *DispatchStats) Observe(n Notifier) Notifier {
	return &observedNotifier{next: n, stats: s}
}

type observedNotifier struct {
	next  Notifier
	stats *DispatchStats
}

func (o *observedNotifier) Notify(ctx context.Context, category webhooks.Category, action webhooks.Action, c webhooks.Context) webhooks.DispatchResult {
	result := o.next.Notify(ctx, category, action, c)
	o.stats.attempted.Add(1)
	if result.Success {
		o.stats.delivered.Add(1)
	}
	if result.UserNotified {
		o.stats.notified.Add(1)
	}
	return result
}

type MetricsHandler struct {
	stats *DispatchStats
}

func NewMetricsHandler(stats *DispatchStats) *MetricsHandler {
	return &MetricsHandler{stats: stats}
}

func (h *MetricsHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP helpdesk_up Is the server up\n")
	fmt.Fprintf(w, "# TYPE helpdesk_up gauge\n")
	fmt.Fprintf(w, "helpdesk_up 1\n")
	fmt.Fprintf(w, "# TYPE helpdesk_webhook_notifications_total counter\n")
	fmt.Fprintf(w, "helpdesk_webhook_notifications_total %d\n", h.stats.attempted.Load())
	fmt.Fprintf(w, "# TYPE helpdesk_webhook_delivered_total counter\n")
	fmt.Fprintf(w, "helpdesk_webhook_delivered_total %d\n", h.stats.delivered.Load())
	fmt.Fprintf(w, "# TYPE helpdesk_webhook_user_notified_total counter\n")
	fmt.Fprintf(w, "helpdesk_webhook_user_notified_total %d\n", h.stats.notified.Load())
}
