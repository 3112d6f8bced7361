package dto

// HealthResponse is the payload of the probe endpoints. Details only
// appears on readiness checks, carrying per-dependency results.
type HealthResponse struct {
	Status  string `json:"status"`
	Details any    `json:"details,omitempty"`
}
