package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSalesSummary aggregates one day of paid sales.
	TaskSalesSummary = "pos:sales_summary"
	// DateLayout is the payload date format.
	DateLayout = "2006-01-02"
)

// SalesSummaryPayload selects the day to summarise. An empty Date means the
// previous UTC day.
type SalesSummaryPayload struct {
	Date string `json:"date,omitempty"`
}

// NewSalesSummaryTask constructs an Asynq task.
func NewSalesSummaryTask(date string) (*asynq.Task, error) {
	if date != "" {
		if _, err := time.Parse(DateLayout, date); err != nil {
			return nil, fmt.Errorf("jobs: sales summary date %q: %w", date, err)
		}
	}
	data, err := json.Marshal(SalesSummaryPayload{Date: date})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSalesSummary, data), nil
}
