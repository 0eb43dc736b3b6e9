package service_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/popeskul/webhook-inbox/internal/repository/mocks"
	"github.com/popeskul/webhook-inbox/internal/service"
	servicemocks "github.com/popeskul/webhook-inbox/internal/service/mocks"
)

func TestHealthService_GetHealth(t *testing.T) {
	tests := []struct {
		name             string
		pingErr          error
		schedulerRunning bool
		expectedStatus   string
		expectedDB       string
		expectedSched    string
	}{
		{
			name:             "healthy with scheduler running",
			pingErr:          nil,
			schedulerRunning: true,
			expectedStatus:   service.StatusHealthy,
			expectedDB:       service.ComponentConnected,
			expectedSched:    service.SchedulerRunning,
		},
		{
			name:             "healthy with scheduler stopped",
			pingErr:          nil,
			schedulerRunning: false,
			expectedStatus:   service.StatusHealthy,
			expectedDB:       service.ComponentConnected,
			expectedSched:    service.SchedulerStopped,
		},
		{
			name:             "unhealthy when database is down",
			pingErr:          errors.New("connection refused"),
			schedulerRunning: true,
			expectedStatus:   service.StatusUnhealthy,
			expectedDB:       service.ComponentDisconnected,
			expectedSched:    service.SchedulerRunning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := mocks.NewMockRepository(ctrl)
			mockRepo.EXPECT().Ping().Return(tt.pingErr)

			mockScheduler := servicemocks.NewMockSchedulerService(ctrl)
			mockScheduler.EXPECT().IsRunning().Return(tt.schedulerRunning)

			svc := service.NewHealthService(mockRepo, newUnreachableRedis(), mockScheduler)

			status := svc.GetHealth()

			assert.Equal(t, tt.expectedStatus, status.Status)
			assert.Equal(t, tt.expectedDB, status.DatabaseStatus)
			assert.Equal(t, tt.expectedSched, status.SchedulerStatus)
			// Redis is unreachable in tests; an outage must not fail readiness.
			assert.Equal(t, service.ComponentDisconnected, status.RedisStatus)
		})
	}
}
