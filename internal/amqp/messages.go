package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// RecapExportMessage asks the worker to export one plan's monthly recap.
// It carries only the coordinates; the worker loads the records itself so
// a stale message can never export stale numbers.
type RecapExportMessage struct {
	PlanID    string    `json:"plan_id"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecapExportMessage(planID string, year, month int) *RecapExportMessage {
	return &RecapExportMessage{
		PlanID:    planID,
		Year:      year,
		Month:     month,
		Timestamp: time.Now(),
	}
}

func (m *RecapExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecapExportMessageFromJSON(data []byte) (*RecapExportMessage, error) {
	var msg RecapExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.PlanID == "" {
		return nil, fmt.Errorf("recap export message missing plan id")
	}
	if msg.Month < 1 || msg.Month > 12 {
		return nil, fmt.Errorf("recap export message has month %d", msg.Month)
	}
	return &msg, nil
}
