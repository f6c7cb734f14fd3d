package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/logiscontrol/logiscontrol/internal/jobs"
	"github.com/logiscontrol/logiscontrol/internal/maintenance"
	"github.com/logiscontrol/logiscontrol/internal/stock"
)

// lowStockLevel mirrors the threshold the stock alerts fire at.
const lowStockLevel = 10

// Mailer sends one message. Satisfied by the SMTP sender.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// OverdueLister returns maintenance tickets open for too long.
// Satisfied by maintenance.Service.
type OverdueLister interface {
	ListOverdue(ctx context.Context) ([]maintenance.Request, error)
}

// MaterialLister returns the raw material stock. Satisfied by stock.Service.
type MaterialLister interface {
	ListMaterials(ctx context.Context) ([]stock.RawMaterial, error)
}

// Announcer posts to a Telegram channel.
type Announcer interface {
	SendMessage(ctx context.Context, channel, text string) error
}

// HandlersConfig carries the recipients for scan reports.
type HandlersConfig struct {
	StockAlertRecipient string
}

// Handlers owns the Asynq task handlers and their dependencies.
type Handlers struct {
	mailer      Mailer
	maintenance OverdueLister
	materials   MaterialLister
	announcer   Announcer
	logger      *slog.Logger
	metrics     *jobmetrics.Metrics
	cfg         HandlersConfig
}

// NewHandlers constructs the task handler set.
func NewHandlers(mailer Mailer, maint OverdueLister, materials MaterialLister, announcer Announcer, logger *slog.Logger, metrics *jobmetrics.Metrics, cfg HandlersConfig) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{mailer: mailer, maintenance: maint, materials: materials, announcer: announcer, logger: logger, metrics: metrics, cfg: cfg}
}

// HandleSendEmail processes TaskTypeSendEmail tasks.
func (h *Handlers) HandleSendEmail(ctx context.Context, t *asynq.Task) error {
	tracker := h.metrics.Track("send_email")
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}
	if payload.To == "" {
		_ = tracker.End(nil)
		return asynq.SkipRetry
	}
	if err := h.mailer.Send(ctx, payload.To, payload.Subject, payload.Body); err != nil {
		h.logger.Warn("send email task", slog.String("task_id", payload.ID), slog.String("to", payload.To), slog.Any("error", err))
		return tracker.End(err)
	}
	return tracker.End(nil)
}

// HandleOverdueScan posts a digest of stale maintenance tickets to the
// maintenance channel. A quiet board produces no message.
func (h *Handlers) HandleOverdueScan(ctx context.Context, t *asynq.Task) error {
	tracker := h.metrics.Track("overdue_scan")
	overdue, err := h.maintenance.ListOverdue(ctx)
	if err != nil {
		return tracker.End(err)
	}
	h.metrics.AddFindings("overdue_scan", "overdue_request", len(overdue))
	if len(overdue) == 0 {
		return tracker.End(nil)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d maintenance request(s) open for more than a week:\n", len(overdue))
	for _, req := range overdue {
		fmt.Fprintf(&b, "- #%d (%s) opened %s: %s\n", req.ID, req.Status, req.OpenedAt.Format("2006-01-02"), req.Description)
	}
	if err := h.announcer.SendMessage(ctx, "maintenance", b.String()); err != nil {
		h.logger.Warn("overdue scan announce", slog.Any("error", err))
		return tracker.End(err)
	}
	return tracker.End(nil)
}

// HandleStockScan emails the stock manager a digest of materials under
// the critical level.
func (h *Handlers) HandleStockScan(ctx context.Context, t *asynq.Task) error {
	tracker := h.metrics.Track("stock_scan")
	materials, err := h.materials.ListMaterials(ctx)
	if err != nil {
		return tracker.End(err)
	}

	var low []stock.RawMaterial
	for _, m := range materials {
		if m.Quantity < lowStockLevel {
			low = append(low, m)
		}
	}
	h.metrics.AddFindings("stock_scan", "low_material", len(low))
	if len(low) == 0 {
		return tracker.End(nil)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d raw material(s) below the critical level:\n", len(low))
	for _, m := range low {
		fmt.Fprintf(&b, "- %s (#%d): %d in stock\n", m.Name, m.ID, m.Quantity)
	}
	if h.cfg.StockAlertRecipient == "" {
		return tracker.End(nil)
	}
	if err := h.mailer.Send(ctx, h.cfg.StockAlertRecipient, "Critical stock digest", b.String()); err != nil {
		h.logger.Warn("stock scan mail", slog.Any("error", err))
		return tracker.End(err)
	}
	return tracker.End(nil)
}
