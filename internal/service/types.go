package service

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	ComponentConnected    = "connected"
	ComponentDisconnected = "disconnected"

	SchedulerRunning = "running"
	SchedulerStopped = "stopped"
)

type HealthStatus struct {
	Status          string `json:"status"`
	DatabaseStatus  string `json:"database_status"`
	RedisStatus     string `json:"redis_status"`
	SchedulerStatus string `json:"scheduler_status"`
}
