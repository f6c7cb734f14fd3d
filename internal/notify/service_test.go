package notify

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/logiscontrol/logiscontrol/internal/platform/mail"
)

type recordingSender struct {
	sent []string
	err  error
}

func (r *recordingSender) Send(ctx context.Context, to, subject, body string) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, to)
	return nil
}

func TestNotifyValidatesFields(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, slog.Default(), nil)
	ctx := context.Background()

	require.Error(t, svc.Notify(ctx, "", "subject", "body"))
	require.Error(t, svc.Notify(ctx, "ops@example.com", "  ", "body"))
	require.Error(t, svc.Notify(ctx, "ops@example.com", "subject", ""))
	require.Empty(t, sender.sent)

	require.NoError(t, svc.Notify(ctx, "ops@example.com", "subject", "body"))
	require.Equal(t, []string{"ops@example.com"}, sender.sent)
}

func TestTryNotifySwallowsTransportErrors(t *testing.T) {
	svc := NewService(&recordingSender{err: errors.New("smtp down")}, slog.Default(), nil)

	ok := svc.TryNotify(context.Background(), "ops@example.com", "subject", "body")
	require.False(t, ok)
}

func TestSenderFuncAdapter(t *testing.T) {
	var got string
	fn := mail.SenderFunc(func(ctx context.Context, to, subject, body string) error {
		got = subject
		return nil
	})
	svc := NewService(fn, slog.Default(), nil)

	require.NoError(t, svc.Notify(context.Background(), "x@y.z", "hello", "world"))
	require.Equal(t, "hello", got)
}
