package catalog

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

	"github.com/zhiyuanbang/gaokao-backend/internal/platform/httpx"
	"github.com/zhiyuanbang/gaokao-backend/internal/platform/logger"
)

// GroupInfo is the catalog display metadata for one program group and the
// school it belongs to. Used only to decorate projector output.
type GroupInfo struct {
	GroupCode  string `json:"group_code"`
	GroupName  string `json:"group_name"`
	SchoolCode string `json:"school_code"`
	SchoolName string `json:"school_name"`
	City       string `json:"city"`
}

// Client looks up program-group metadata from the catalog service.
type Client interface {
	GroupInfos(ctx context.Context, groupCodes []string) (map[string]*GroupInfo, error)
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
	baseURL := strings.TrimSpace(os.Getenv("CATALOG_URL"))
	if baseURL == "" {
		return nil, fmt.Errorf("missing CATALOG_URL")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeoutSec := 10
	if v := os.Getenv("CATALOG_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	return &client{
		log:        log.With("service", "CatalogClient"),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: 2,
	}, nil
}

type catalogHTTPError struct {
	StatusCode int
	Body       string
}

func (e *catalogHTTPError) Error() string {
	return fmt.Sprintf("catalog http %d: %s", e.StatusCode, e.Body)
}

func (e *catalogHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) GroupInfos(ctx context.Context, groupCodes []string) (map[string]*GroupInfo, error) {
	if len(groupCodes) == 0 {
		return map[string]*GroupInfo{}, nil
	}
	body := map[string]interface{}{"group_codes": groupCodes}
	var out struct {
		Groups []*GroupInfo `json:"groups"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/program-groups/lookup", body, &out); err != nil {
		return nil, err
	}
	infos := make(map[string]*GroupInfo, len(out.Groups))
	for _, g := range out.Groups {
		if g != nil && g.GroupCode != "" {
			infos[g.GroupCode] = g
		}
	}
	return infos, nil
}

func (c *client) do(ctx context.Context, method, path string, body any, out any) error {
	backoff := 500 * time.Millisecond

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var buf bytes.Buffer
		if body != nil {
			if err := json.NewEncoder(&buf).Encode(body); err != nil {
				return err
			}
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, doErr := c.httpClient.Do(req)
		if doErr == nil {
			raw, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if readErr == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
				if out == nil {
					return nil
				}
				if uErr := json.Unmarshal(raw, out); uErr != nil {
					return fmt.Errorf("catalog decode error: %w; raw=%s", uErr, string(raw))
				}
				return nil
			}
			if readErr != nil {
				doErr = readErr
			} else {
				doErr = &catalogHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
			}
		}

		if !httpx.IsRetryableError(doErr) || attempt == c.maxRetries {
			return doErr
		}
		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 5*time.Second))
		c.log.Warn("Catalog request retrying",
			"path", path,
			"attempt", attempt+1,
			"error", doErr.Error(),
		)
		time.Sleep(sleepFor)
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}
