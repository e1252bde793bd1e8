package response

import "time"

// serviceName stamps every envelope so aggregated logs and multi-service
// dashboards can attribute responses.
const serviceName = "cinebook"

// Envelope is the JSON body every endpoint returns, success or error.
type Envelope struct {
	Service    string      `json:"service"`
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Timestamp  time.Time   `json:"timestamp"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
}
