package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskTypeSendEmail delivers one transactional email.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeOverdueScan flags maintenance tickets open for too long.
	TaskTypeOverdueScan = "maintenance:overdue_scan"
	// TaskTypeStockScan reports raw materials sitting below the critical level.
	TaskTypeStockScan = "stock:critical_scan"
)

// SendEmailPayload describes the information required to send an email.
// ID doubles as the asynq task id so retries stay traceable in logs.
type SendEmailPayload struct {
	ID      string `json:"id"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task. A missing payload ID is
// filled with a fresh UUID.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	if payload.ID == "" {
		payload.ID = uuid.NewString()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data, asynq.Queue(QueueDefault), asynq.TaskID(payload.ID)), nil
}

// NewOverdueScanTask builds the periodic maintenance scan task.
func NewOverdueScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeOverdueScan, nil, asynq.Queue(QueueDefault))
}

// NewStockScanTask builds the periodic low-stock scan task.
func NewStockScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeStockScan, nil, asynq.Queue(QueueDefault))
}
