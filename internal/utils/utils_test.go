package utils

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsOnSecondAttempt(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, time.Millisecond, func(attempt int) error {
		calls++
		if attempt == 1 {
			return errors.New("boom")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryReturnsLastError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, time.Millisecond, func(attempt int) error {
		calls++
		return fmt.Errorf("failure %d", attempt)
	})
	require.Error(t, err)
	assert.Equal(t, "failure 2", err.Error())
	assert.Equal(t, 2, calls)
}

func TestRetryWaitsBetweenAttempts(t *testing.T) {
	start := time.Now()
	_ = Retry(context.Background(), 2, 50*time.Millisecond, func(int) error {
		return errors.New("nope")
	})
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Retry(ctx, 3, time.Hour, func(int) error {
		calls++
		return errors.New("nope")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRandomID(t *testing.T) {
	re := regexp.MustCompile(`^[A-Za-z0-9]{6}$`)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := RandomID(6)
		assert.Regexp(t, re, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 90)
	assert.Len(t, RandomID(4), 4)
	assert.Empty(t, RandomID(0))
}

func TestUpstreamStatus(t *testing.T) {
	apiErr := &openai.APIError{HTTPStatusCode: 429, Message: "rate limited"}
	assert.Equal(t, 429, UpstreamStatus(fmt.Errorf("wrapped: %w", apiErr)))
	reqErr := &openai.RequestError{HTTPStatusCode: 502, Err: errors.New("bad gateway")}
	assert.Equal(t, 502, UpstreamStatus(reqErr))
	assert.Equal(t, 0, UpstreamStatus(errors.New("plain")))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ContentType("sheet-1-abcdef.xlsx"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ContentType("REPORT.XLSX"))
	assert.Equal(t, "application/octet-stream", ContentType("notes"))
	assert.Equal(t, "application/octet-stream", ContentType("export.csv"))
}
