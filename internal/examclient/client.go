// Package examclient is the HTTP client side of the exam API: it fetches
// exam payloads and posts computed results, and plugs straight into a
// session.Session as its ExamSource and ResultSink.
package examclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/eduprep/exam-service/internal/models"
	"github.com/eduprep/exam-service/internal/session"
)

const defaultTimeout = 15 * time.Second

var ErrExamNotFound = errors.New("exam not found")

type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope matches the API's response wrapper: payload under "data".
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// FetchExam retrieves the full exam payload, questions included.
func (c *Client) FetchExam(ctx context.Context, examID string) (*models.Exam, error) {
	endpoint := fmt.Sprintf("%s/exams/%s", c.baseURL, url.PathEscape(examID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build exam request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exam %s: %w", examID, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrExamNotFound
	default:
		return nil, fmt.Errorf("fetch exam %s: unexpected status %d", examID, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read exam response: %w", err)
	}

	var exam models.Exam
	if err := decodeData(body, &exam); err != nil {
		return nil, fmt.Errorf("failed to decode exam %s: %w", examID, err)
	}

	c.logger.Debug("fetched exam", "exam_id", exam.ID, "questions", len(exam.Questions))
	return &exam, nil
}

// SaveResult posts a computed result. Callers treat failures as best-effort;
// the session keeps the result in memory either way.
func (c *Client) SaveResult(ctx context.Context, result *models.ExamResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode exam result: %w", err)
	}

	endpoint := c.baseURL + "/exam-results"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build result request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post exam result: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("post exam result: unexpected status %d", resp.StatusCode)
	}

	c.logger.Debug("saved exam result", "exam_id", result.ExamID)
	return nil
}

// decodeData accepts both the enveloped shape {"data": {...}} and a bare
// payload, so the client works against older deployments too.
func decodeData(body []byte, out interface{}) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return json.Unmarshal(body, out)
}

var (
	_ session.ExamSource = (*Client)(nil)
	_ session.ResultSink = (*Client)(nil)
)
