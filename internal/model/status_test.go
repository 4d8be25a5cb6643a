package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Next(t *testing.T) {
	tests := []struct {
		name        string
		current     Status
		expected    Status
		expectedErr error
	}{
		{
			name:     "Waiting advances to preparing",
			current:  StatusWaiting,
			expected: StatusPreparing,
		},
		{
			name:     "Preparing advances to ready",
			current:  StatusPreparing,
			expected: StatusReady,
		},
		{
			name:     "Ready wraps back to preparing",
			current:  StatusReady,
			expected: StatusPreparing,
		},
		{
			name:        "Completed cannot advance",
			current:     StatusCompleted,
			expectedErr: ErrAlreadyCompleted,
		},
		{
			name:        "Unknown status is rejected",
			current:     Status("shipped"),
			expectedErr: ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := tt.current.Next()

			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.Equal(t, tt.expectedErr, err)
				assert.Empty(t, next)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, next)
			}
		})
	}
}

func TestStatus_ManualCycleNeverReachesCompleted(t *testing.T) {
	// Starting from waiting, any number of manual advances oscillates
	// between preparing and ready. Only the expiry timer writes completed.
	s := StatusWaiting
	for i := 0; i < 20; i++ {
		next, err := s.Next()
		require.NoError(t, err)
		assert.NotEqual(t, StatusCompleted, next)
		s = next
	}
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range []Status{StatusWaiting, StatusPreparing, StatusReady, StatusCompleted} {
		assert.True(t, s.Valid(), string(s))
	}

	assert.False(t, Status("").Valid())
	assert.False(t, Status("done").Valid())
}
