package jobs

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewSendEmailTaskAssignsID(t *testing.T) {
	first, err := NewSendEmailTask(SendEmailPayload{To: "ops@factory.example", Subject: "hi"})
	require.NoError(t, err)
	second, err := NewSendEmailTask(SendEmailPayload{To: "ops@factory.example", Subject: "hi"})
	require.NoError(t, err)

	var p1, p2 SendEmailPayload
	require.NoError(t, json.Unmarshal(first.Payload(), &p1))
	require.NoError(t, json.Unmarshal(second.Payload(), &p2))

	_, err = uuid.Parse(p1.ID)
	require.NoError(t, err)
	require.NotEqual(t, p1.ID, p2.ID)
}

func TestNewSendEmailTaskKeepsCallerID(t *testing.T) {
	task, err := NewSendEmailTask(SendEmailPayload{ID: "caller-chosen", To: "ops@factory.example"})
	require.NoError(t, err)

	var p SendEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	require.Equal(t, "caller-chosen", p.ID)
}
