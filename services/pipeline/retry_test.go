package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailvault/internal/models"
)

type scriptedRunner struct {
	results []error
	calls   int
	summary models.RunSummary
	panics  bool
}

func (s *scriptedRunner) ProcessBatch(ctx context.Context) (models.RunSummary, error) {
	s.calls++
	if s.panics {
		panic("aggregation fault")
	}
	err := s.results[s.calls-1]
	if err != nil {
		return models.RunSummary{}, err
	}
	return s.summary, nil
}

func stubSleep(runner *RetryRunner) *[]time.Duration {
	var slept []time.Duration
	runner.sleep = func(d time.Duration) {
		slept = append(slept, d)
	}
	return &slept
}

func TestRetryRunner_SucceedsOnLastAttempt(t *testing.T) {
	// Arrange: two failures, then success
	coordinator := &scriptedRunner{
		results: []error{errors.New("fetch timeout"), errors.New("fetch timeout"), nil},
		summary: models.RunSummary{TotalEmails: 3, ProcessedAttachments: 2},
	}
	runner := NewRetryRunner(coordinator, 3, 30*time.Second, getLogger())
	slept := stubSleep(runner)

	// Act
	summary, err := runner.Run(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, coordinator.calls)
	assert.Equal(t, 3, summary.TotalEmails)
	assert.Equal(t, 2, summary.ProcessedAttachments)

	// Delay between attempts only, never after the last one
	require.Len(t, *slept, 2)
	assert.Equal(t, 30*time.Second, (*slept)[0])
	assert.Equal(t, 30*time.Second, (*slept)[1])
}

func TestRetryRunner_FirstAttemptSuccessSkipsDelay(t *testing.T) {
	// Arrange
	coordinator := &scriptedRunner{results: []error{nil}, summary: models.RunSummary{TotalEmails: 1}}
	runner := NewRetryRunner(coordinator, 3, time.Second, getLogger())
	slept := stubSleep(runner)

	// Act
	summary, err := runner.Run(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, coordinator.calls)
	assert.Equal(t, 1, summary.TotalEmails)
	assert.Empty(t, *slept)
}

func TestRetryRunner_ExhaustionIsTerminal(t *testing.T) {
	// Arrange
	lastErr := errors.New("imap unreachable")
	coordinator := &scriptedRunner{results: []error{errors.New("imap unreachable"), lastErr}}
	runner := NewRetryRunner(coordinator, 2, time.Second, getLogger())
	slept := stubSleep(runner)

	// Act
	_, err := runner.Run(context.Background())

	// Assert
	require.Error(t, err)
	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 2, exhausted.Attempts)
	assert.ErrorIs(t, err, lastErr)
	assert.Contains(t, err.Error(), "all 2 attempts failed")

	assert.Equal(t, 2, coordinator.calls)
	assert.Len(t, *slept, 1)
}

func TestRetryRunner_PanicCountsAsFailedAttempt(t *testing.T) {
	// Arrange
	coordinator := &scriptedRunner{panics: true}
	runner := NewRetryRunner(coordinator, 2, time.Second, getLogger())
	stubSleep(runner)

	// Act
	_, err := runner.Run(context.Background())

	// Assert
	require.Error(t, err)
	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Contains(t, err.Error(), "batch aborted")
	assert.Equal(t, 2, coordinator.calls)
}

func TestRetryRunner_InvalidAttemptCountFallsBackToOne(t *testing.T) {
	// Arrange
	coordinator := &scriptedRunner{results: []error{errors.New("boom")}}
	runner := NewRetryRunner(coordinator, 0, time.Second, getLogger())
	stubSleep(runner)

	// Act
	_, err := runner.Run(context.Background())

	// Assert
	require.Error(t, err)
	assert.Equal(t, 1, coordinator.calls)
}
