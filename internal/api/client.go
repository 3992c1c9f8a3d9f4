package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"order-desk/internal/core"
)

// DefaultTimeout matches the general-purpose client the desk always used.
const DefaultTimeout = 10 * time.Second

const (
	defaultPage     = 1
	defaultPageSize = 10
)

// Client is the typed accessor for the sales backend's REST API.
// It holds no session: every call receives the caller's core.Session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for baseURL. A non-positive timeout means DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("backend error %d [%s]: %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("backend error %d: %s", e.Status, msg)
}

// Is lets callers match status-based sentinels with errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case core.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case core.ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// errorBody accepts both {"error": ...} and {"message": ...} payloads.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func pageQuery(page, pageSize int) url.Values {
	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(pageSize))
	return q
}

// setAuthHeaders attaches the bearer token, or the fallback identity pair
// when the session has none.
func setAuthHeaders(req *http.Request, sess core.Session) {
	if sess.Authenticated() {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
		return
	}
	req.Header.Set("X-User-ID", sess.FallbackUserID)
	req.Header.Set("X-Region-ID", sess.FallbackRegionID)
}

// doRequest executes one backend call.
// body is JSON-encoded when non-nil; result is decoded from a 2xx body when non-nil.
// Transport failures return *core.NetworkError, non-2xx responses *APIError.
func (c *Client) doRequest(ctx context.Context, sess core.Session, method, path string, query url.Values, body, result any) error {
	op := method + " " + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request body: %w", op, err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	setAuthHeaders(req, sess)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return &core.NetworkError{Op: op, Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &core.NetworkError{Op: op, Cause: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", requestID),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, RequestID: requestID}
		var eb errorBody
		if json.Unmarshal(respBody, &eb) == nil {
			apiErr.Code = eb.Code
			apiErr.Message = eb.Error
			if apiErr.Message == "" {
				apiErr.Message = eb.Message
			}
		}
		if resp.StatusCode == http.StatusUnauthorized {
			c.logger.Warn("backend rejected session as unauthorized; no redirect performed",
				zap.String("path", path),
				zap.Bool("bearer", sess.Authenticated()),
				zap.String("request_id", requestID),
			)
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%s: failed to decode response: %w", op, err)
		}
	}
	return nil
}

// isRejection reports whether err is a backend response rather than a
// transport or encoding failure.
func isRejection(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
