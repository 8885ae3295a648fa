package types

import "time"

// HealthState is the outcome of probing a dependency.
type HealthState string

const (
	// HealthStateHealthy means the dependency answered the probe.
	HealthStateHealthy HealthState = "healthy"

	// HealthStateDegraded means the service runs but a dependency is
	// impaired; sync runs may still fail.
	HealthStateDegraded HealthState = "degraded"

	// HealthStateUnhealthy means the dependency did not answer.
	HealthStateUnhealthy HealthState = "unhealthy"
)

// HealthStatus is one point-in-time probe result. It is a snapshot, not a
// subscription: callers re-probe rather than cache it.
type HealthStatus struct {
	State     HealthState `json:"state"`
	Message   string      `json:"message,omitempty"`
	CheckedAt time.Time   `json:"checked_at"`
}

// Healthy builds a passing probe result.
func Healthy(message string) HealthStatus {
	return HealthStatus{State: HealthStateHealthy, Message: message, CheckedAt: time.Now()}
}

// Unhealthy builds a failing probe result.
func Unhealthy(message string) HealthStatus {
	return HealthStatus{State: HealthStateUnhealthy, Message: message, CheckedAt: time.Now()}
}

// IsHealthy reports whether the probe passed.
func (h HealthStatus) IsHealthy() bool {
	return h.State == HealthStateHealthy
}
