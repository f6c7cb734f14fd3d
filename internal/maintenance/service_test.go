package maintenance

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryMaintRepo struct {
	machines map[int64]Machine
	requests map[int64]Request
	records  map[int64]Record
	nextID   int64
}

func newMemoryMaintRepo() *memoryMaintRepo {
	return &memoryMaintRepo{
		machines: make(map[int64]Machine),
		requests: make(map[int64]Request),
		records:  make(map[int64]Record),
	}
}

func (r *memoryMaintRepo) ListMachines(ctx context.Context) ([]Machine, error) {
	var out []Machine
	for id := int64(1); id <= r.nextID; id++ {
		if m, ok := r.machines[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryMaintRepo) GetMachine(ctx context.Context, id int64) (Machine, bool, error) {
	m, ok := r.machines[id]
	return m, ok, nil
}

func (r *memoryMaintRepo) CreateMachine(ctx context.Context, m Machine) (int64, error) {
	r.nextID++
	m.ID = r.nextID
	r.machines[m.ID] = m
	return m.ID, nil
}

func (r *memoryMaintRepo) ListRequests(ctx context.Context, state string) ([]Request, error) {
	var out []Request
	for id := int64(1); id <= r.nextID; id++ {
		req, ok := r.requests[id]
		if !ok {
			continue
		}
		if state != "" && string(req.Status) != state {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

func (r *memoryMaintRepo) ListOverdue(ctx context.Context, before time.Time) ([]Request, error) {
	var out []Request
	for id := int64(1); id <= r.nextID; id++ {
		req, ok := r.requests[id]
		if !ok {
			continue
		}
		if req.Status != RequestDone && req.OpenedAt.Before(before) {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *memoryMaintRepo) GetRequest(ctx context.Context, id int64) (Request, bool, error) {
	req, ok := r.requests[id]
	return req, ok, nil
}

func (r *memoryMaintRepo) CreateRequest(ctx context.Context, req Request) (int64, error) {
	r.nextID++
	req.ID = r.nextID
	r.requests[req.ID] = req
	return req.ID, nil
}

func (r *memoryMaintRepo) UpdateRequest(ctx context.Context, req Request) error {
	if _, ok := r.requests[req.ID]; !ok {
		return ErrNotFound
	}
	r.requests[req.ID] = req
	return nil
}

func (r *memoryMaintRepo) GetRecord(ctx context.Context, id int64) (Record, bool, error) {
	rec, ok := r.records[id]
	return rec, ok, nil
}

func (r *memoryMaintRepo) ListRecordsForRequest(ctx context.Context, requestID int64) ([]Record, error) {
	var out []Record
	for id := int64(1); id <= r.nextID; id++ {
		if rec, ok := r.records[id]; ok && rec.RequestID == requestID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memoryMaintRepo) CreateRecord(ctx context.Context, rec Record) (int64, error) {
	r.nextID++
	rec.ID = r.nextID
	r.records[rec.ID] = rec
	return rec.ID, nil
}

func (r *memoryMaintRepo) UpdateRecord(ctx context.Context, rec Record) error {
	if _, ok := r.records[rec.ID]; !ok {
		return ErrNotFound
	}
	r.records[rec.ID] = rec
	return nil
}

type recordingAnnouncer struct {
	messages []string
	channels []string
}

func (a *recordingAnnouncer) SendMessage(ctx context.Context, channel, text string) error {
	a.channels = append(a.channels, channel)
	a.messages = append(a.messages, text)
	return nil
}

func newMaintFixture(t *testing.T) (*Service, *memoryMaintRepo, *recordingAnnouncer, Machine) {
	t.Helper()
	repo := newMemoryMaintRepo()
	announcer := &recordingAnnouncer{}
	svc := NewService(repo, announcer, slog.New(slog.NewTextHandler(io.Discard, nil)))
	machine, err := svc.CreateMachine(context.Background(), CreateMachineInput{Name: "Press 4", Type: "press", ProductionLine: "L3"})
	require.NoError(t, err)
	return svc, repo, announcer, machine
}

func TestCreateRequestAnnouncesMaintenance(t *testing.T) {
	svc, repo, announcer, machine := newMaintFixture(t)

	req, err := svc.CreateRequest(context.Background(), CreateRequestInput{Description: "Hydraulic leak", MachineID: machine.ID}, 42)
	require.NoError(t, err)
	require.Equal(t, RequestWaiting, req.Status)
	require.Equal(t, int64(42), req.ReporterID)
	require.Equal(t, []string{"maintenance"}, announcer.channels)
	require.Contains(t, announcer.messages[0], "Press 4")
	require.Contains(t, announcer.messages[0], "Hydraulic leak")
	require.Len(t, repo.requests, 1)
}

func TestCreateRequestValidation(t *testing.T) {
	svc, _, _, machine := newMaintFixture(t)
	ctx := context.Background()

	_, err := svc.CreateRequest(ctx, CreateRequestInput{Description: " ", MachineID: machine.ID}, 42)
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateRequest(ctx, CreateRequestInput{Description: "x", MachineID: 999}, 42)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.CreateRequest(ctx, CreateRequestInput{Description: "x", MachineID: machine.ID}, 0)
	require.ErrorIs(t, err, ErrValidation)
}

func TestRefusalClosesAndNotifiesProduction(t *testing.T) {
	svc, repo, announcer, machine := newMaintFixture(t)
	req, err := svc.CreateRequest(context.Background(), CreateRequestInput{Description: "Noise", MachineID: machine.ID}, 42)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateRequestState(context.Background(), req.ID, RequestRefused))

	stored := repo.requests[req.ID]
	require.Equal(t, RequestRefused, stored.Status)
	require.NotNil(t, stored.ClosedAt)
	require.Equal(t, "production", announcer.channels[len(announcer.channels)-1])

	err = svc.UpdateRequestState(context.Background(), req.ID, RequestState("BOGUS"))
	require.ErrorIs(t, err, ErrValidation)
}

func TestReopenAppendsJustification(t *testing.T) {
	svc, repo, announcer, machine := newMaintFixture(t)
	req, err := svc.CreateRequest(context.Background(), CreateRequestInput{Description: "Noise", MachineID: machine.ID}, 42)
	require.NoError(t, err)
	require.NoError(t, svc.UpdateRequestState(context.Background(), req.ID, RequestRefused))

	require.NoError(t, svc.ReopenRequest(context.Background(), req.ID, "still grinding on startup", "1001"))

	stored := repo.requests[req.ID]
	require.Equal(t, RequestWaiting, stored.Status)
	require.Nil(t, stored.ClosedAt)
	require.True(t, strings.Contains(stored.Description, "still grinding on startup"))
	require.True(t, strings.Contains(stored.Description, "Reopened by 1001"))
	require.Equal(t, "maintenance", announcer.channels[len(announcer.channels)-1])

	err = svc.ReopenRequest(context.Background(), req.ID, "  ", "1001")
	require.ErrorIs(t, err, ErrValidation)
}

func TestResolveRecordCompletesRequest(t *testing.T) {
	svc, repo, announcer, machine := newMaintFixture(t)
	req, err := svc.CreateRequest(context.Background(), CreateRequestInput{Description: "Leak", MachineID: machine.ID}, 42)
	require.NoError(t, err)

	rec, err := svc.AddRecord(context.Background(), req.ID, RecordInput{Description: "Inspecting seals"}, 7)
	require.NoError(t, err)
	require.Equal(t, RequestInProgress, repo.requests[req.ID].Status)

	require.NoError(t, svc.ResolveRecord(context.Background(), rec.ID, "Replaced the main seal"))

	stored := repo.requests[req.ID]
	require.Equal(t, RequestDone, stored.Status)
	require.NotNil(t, stored.ClosedAt)
	require.Equal(t, RecordResolved, repo.records[rec.ID].Status)
	last := announcer.messages[len(announcer.messages)-1]
	require.Contains(t, last, "Replaced the main seal")
	require.Equal(t, "production", announcer.channels[len(announcer.channels)-1])

	err = svc.ResolveRecord(context.Background(), rec.ID, "again")
	require.ErrorIs(t, err, ErrConflict)
}

func TestAddRecordRejectsClosedRequests(t *testing.T) {
	svc, _, _, machine := newMaintFixture(t)
	req, err := svc.CreateRequest(context.Background(), CreateRequestInput{Description: "Leak", MachineID: machine.ID}, 42)
	require.NoError(t, err)
	require.NoError(t, svc.UpdateRequestState(context.Background(), req.ID, RequestRefused))

	_, err = svc.AddRecord(context.Background(), req.ID, RecordInput{Description: "late work"}, 7)
	require.ErrorIs(t, err, ErrConflict)
}

func TestListOverdue(t *testing.T) {
	svc, repo, _, machine := newMaintFixture(t)
	old, err := svc.CreateRequest(context.Background(), CreateRequestInput{Description: "Old", MachineID: machine.ID}, 42)
	require.NoError(t, err)
	fresh, err := svc.CreateRequest(context.Background(), CreateRequestInput{Description: "Fresh", MachineID: machine.ID}, 42)
	require.NoError(t, err)

	stale := repo.requests[old.ID]
	stale.OpenedAt = time.Now().Add(-8 * 24 * time.Hour)
	repo.requests[old.ID] = stale

	overdue, err := svc.ListOverdue(context.Background())
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	require.Equal(t, old.ID, overdue[0].ID)
	require.NotEqual(t, fresh.ID, overdue[0].ID)
}
