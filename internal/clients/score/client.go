package score

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zhiyuanbang/gaokao-backend/internal/platform/httpx"
	"github.com/zhiyuanbang/gaokao-backend/internal/platform/logger"
)

// Client is the external score engine: given a student and a list of major
// names it answers the computed admission score per major. Internals of the
// score computation are out of scope for this backend.
type Client interface {
	ScoreForMajors(ctx context.Context, userID uuid.UUID, majorNames []string) (map[string]float64, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	baseURL := strings.TrimSpace(os.Getenv("SCORE_ENGINE_URL"))
	if baseURL == "" {
		return nil, fmt.Errorf("missing SCORE_ENGINE_URL")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeoutSec := 10
	if v := os.Getenv("SCORE_ENGINE_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}
	maxRetries := 2
	if v := os.Getenv("SCORE_ENGINE_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}

	return &client{
		log:        log.With("service", "ScoreClient"),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
	}, nil
}

type scoreHTTPError struct {
	StatusCode int
	Body       string
}

func (e *scoreHTTPError) Error() string {
	return fmt.Sprintf("score engine http %d: %s", e.StatusCode, e.Body)
}

func (e *scoreHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) ScoreForMajors(ctx context.Context, userID uuid.UUID, majorNames []string) (map[string]float64, error) {
	if len(majorNames) == 0 {
		return map[string]float64{}, nil
	}
	body := map[string]interface{}{
		"user_id": userID.String(),
		"majors":  majorNames,
	}
	var out struct {
		Scores map[string]float64 `json:"scores"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/major-scores", body, &out); err != nil {
		return nil, err
	}
	if out.Scores == nil {
		out.Scores = map[string]float64{}
	}
	return out.Scores, nil
}

func (c *client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &scoreHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *client) do(ctx context.Context, method, path string, body any, out any) error {
	backoff := 500 * time.Millisecond

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("score engine decode error: %w; raw=%s", uErr, string(raw))
			}
			return nil
		}

		if !httpx.IsRetryableError(err) {
			return err
		}
		if attempt == c.maxRetries {
			return err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 5*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)
		c.log.Warn("Score engine request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		time.Sleep(sleepFor)
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}
