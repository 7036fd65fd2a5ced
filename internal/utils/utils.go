package utils

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"path/filepath"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Retry calls fn up to attempts times, sleeping delay between attempts.
// The error of the last attempt is returned unchanged. A cancelled ctx stops the wait.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func(attempt int) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry aborted after attempt %d: %w", attempt, errors.Join(err, ctx.Err()))
		case <-timer.C:
		}
	}
	return err
}

// RandomID returns n characters drawn uniformly from [A-Za-z0-9].
func RandomID(n int) string {
	var sb strings.Builder
	sb.Grow(n)
	limit := big.NewInt(int64(len(alphanumeric)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(fmt.Sprintf("crypto/rand failed: %v", err))
		}
		sb.WriteByte(alphanumeric[idx.Int64()])
	}
	return sb.String()
}

// UpstreamStatus extracts the HTTP status code from an OpenAI client error, or 0 if unknown.
func UpstreamStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// ContentType maps the files this service writes to their MIME type.
func ContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
