package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/logiscontrol/logiscontrol/internal/jobs"
	"github.com/logiscontrol/logiscontrol/internal/maintenance"
	"github.com/logiscontrol/logiscontrol/internal/stock"
)

type sentMail struct {
	to      string
	subject string
	body    string
}

type recordingMailer struct {
	sent []sentMail
	fail bool
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type staticOverdue struct {
	requests []maintenance.Request
}

func (s *staticOverdue) ListOverdue(ctx context.Context) ([]maintenance.Request, error) {
	return s.requests, nil
}

type staticMaterials struct {
	materials []stock.RawMaterial
}

func (s *staticMaterials) ListMaterials(ctx context.Context) ([]stock.RawMaterial, error) {
	return s.materials, nil
}

type channelMessage struct {
	channel string
	text    string
}

type recordingAnnouncer struct {
	messages []channelMessage
}

func (a *recordingAnnouncer) SendMessage(ctx context.Context, channel, text string) error {
	a.messages = append(a.messages, channelMessage{channel: channel, text: text})
	return nil
}

func newJobFixture(overdue []maintenance.Request, materials []stock.RawMaterial) (*Handlers, *recordingMailer, *recordingAnnouncer) {
	mailer := &recordingMailer{}
	announcer := &recordingAnnouncer{}
	metrics := jobmetrics.NewMetrics(prometheus.NewRegistry())
	h := NewHandlers(
		mailer,
		&staticOverdue{requests: overdue},
		&staticMaterials{materials: materials},
		announcer,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics,
		HandlersConfig{StockAlertRecipient: "stock@factory.example"},
	)
	return h, mailer, announcer
}

func TestHandleSendEmailDelivers(t *testing.T) {
	h, mailer, _ := newJobFixture(nil, nil)

	task, err := NewSendEmailTask(SendEmailPayload{To: "ops@factory.example", Subject: "Hi", Body: "Hello"})
	require.NoError(t, err)
	require.NoError(t, h.HandleSendEmail(context.Background(), task))
	require.Len(t, mailer.sent, 1)
	require.Equal(t, "ops@factory.example", mailer.sent[0].to)

	// a broken payload is dropped, not retried
	err = h.HandleSendEmail(context.Background(), asynq.NewTask(TaskTypeSendEmail, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	mailer.fail = true
	task, err = NewSendEmailTask(SendEmailPayload{To: "ops@factory.example", Subject: "Hi"})
	require.NoError(t, err)
	require.Error(t, h.HandleSendEmail(context.Background(), task))
}

func TestHandleOverdueScanAnnouncesDigest(t *testing.T) {
	opened := time.Now().Add(-10 * 24 * time.Hour)
	h, _, announcer := newJobFixture([]maintenance.Request{
		{ID: 4, Description: "press leaking oil", Status: maintenance.RequestWaiting, OpenedAt: opened},
		{ID: 9, Description: "belt misaligned", Status: maintenance.RequestInProgress, OpenedAt: opened},
	}, nil)

	require.NoError(t, h.HandleOverdueScan(context.Background(), NewOverdueScanTask()))
	require.Len(t, announcer.messages, 1)
	require.Equal(t, "maintenance", announcer.messages[0].channel)
	require.Contains(t, announcer.messages[0].text, "2 maintenance request(s)")
	require.Contains(t, announcer.messages[0].text, "press leaking oil")
}

func TestHandleOverdueScanQuietBoard(t *testing.T) {
	h, _, announcer := newJobFixture(nil, nil)
	require.NoError(t, h.HandleOverdueScan(context.Background(), NewOverdueScanTask()))
	require.Empty(t, announcer.messages)
}

func TestHandleStockScanMailsLowMaterials(t *testing.T) {
	h, mailer, _ := newJobFixture(nil, []stock.RawMaterial{
		{ID: 1, Name: "Steel plate", Quantity: 4},
		{ID: 2, Name: "Bolt M8", Quantity: 500},
		{ID: 3, Name: "Paint", Quantity: 9},
	})

	require.NoError(t, h.HandleStockScan(context.Background(), NewStockScanTask()))
	require.Len(t, mailer.sent, 1)
	require.Equal(t, "Critical stock digest", mailer.sent[0].subject)
	require.Contains(t, mailer.sent[0].body, "Steel plate")
	require.Contains(t, mailer.sent[0].body, "Paint")
	require.NotContains(t, mailer.sent[0].body, "Bolt M8")
}

func TestHandleStockScanNothingLow(t *testing.T) {
	h, mailer, _ := newJobFixture(nil, []stock.RawMaterial{
		{ID: 2, Name: "Bolt M8", Quantity: 500},
	})
	require.NoError(t, h.HandleStockScan(context.Background(), NewStockScanTask()))
	require.Empty(t, mailer.sent)
}
