package purchasing

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newHandlerFixture(t *testing.T) (*fixture, http.Handler) {
	t.Helper()
	f := newFixture()
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), f.service)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return f, r
}

func patchReceive(t *testing.T, router http.Handler, noteID int64, body string) *httptest.ResponseRecorder {
	t.Helper()
	target := fmt.Sprintf("/delivery-notes/%d/receive", noteID)
	req := httptest.NewRequest(http.MethodPatch, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestReceiveEndpointGoodCondition(t *testing.T) {
	f, router := newHandlerFixture(t)
	_, note := acceptedNote(t, f)

	rec := patchReceive(t, router, note.ID, `{"inGoodCondition": true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, NoteReceived, f.repo.notes[note.ID].Status)
	require.Equal(t, int64(10), f.repo.stock[1])
}

func TestReceiveEndpointBadConditionDisputes(t *testing.T) {
	f, router := newHandlerFixture(t)
	_, note := acceptedNote(t, f)
	mailsBefore := len(f.notifier.sent)

	rec := patchReceive(t, router, note.ID, `{"inGoodCondition": false}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), string(NoteDisputed))
	require.Equal(t, NoteDisputed, f.repo.notes[note.ID].Status)
	// nothing hit the warehouse
	require.Zero(t, f.repo.stock[1])
	require.Zero(t, f.repo.stock[2])
	// supplier got the dispute mail
	require.Len(t, f.notifier.sent, mailsBefore+1)
	require.Equal(t, "sales@aceros.example", f.notifier.sent[len(f.notifier.sent)-1])
}

func TestReceiveEndpointBadConditionSurvivesMailFailure(t *testing.T) {
	f, router := newHandlerFixture(t)
	_, note := acceptedNote(t, f)
	f.notifier.fail = true

	rec := patchReceive(t, router, note.ID, `{"inGoodCondition": false}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, NoteDisputed, f.repo.notes[note.ID].Status)
}

func TestReceiveEndpointRejectsMissingFlag(t *testing.T) {
	f, router := newHandlerFixture(t)
	_, note := acceptedNote(t, f)

	rec := patchReceive(t, router, note.ID, `{}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, NotePending, f.repo.notes[note.ID].Status)
}
