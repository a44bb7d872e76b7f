// Package remote talks to the typeroo web API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/typeroo/internal/model"
)

const (
	saveResultPath  = "/api/tests/save"
	customTextsPath = "/api/custom-texts"
	defaultTimeout  = 10 * time.Second
	maxErrorBody    = 512
)

// Client is a JSON client for the results and custom-text endpoints.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New returns a Client for baseURL authenticating with a bearer token.
// A nil httpClient uses a client with a short timeout.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

type resultRequest struct {
	WPM            float64 `json:"wpm"`
	RawWPM         float64 `json:"rawWpm"`
	Accuracy       float64 `json:"accuracy"`
	Duration       int     `json:"duration"`
	CorrectChars   int     `json:"correctChars"`
	IncorrectChars int     `json:"incorrectChars"`
}

type customTextRequest struct {
	Content  string `json:"content"`
	IsPublic bool   `json:"isPublic"`
}

type customTextResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Public    bool      `json:"public"`
	CreatedAt timestamp `json:"createdAt"`
}

// localDateTime is how the API writes timestamps: no zone offset.
const localDateTime = "2006-01-02T15:04:05.999999999"

// timestamp decodes API timestamps in local time, accepting RFC 3339 too.
type timestamp struct {
	time.Time
}

func (t *timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.ParseInLocation(localDateTime, s, time.Local)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("timestamp %q: %w", s, err)
		}
	}
	t.Time = parsed
	return nil
}

// SaveResult posts a finished test. The API assigns no numeric id, so the
// returned id is always 0.
func (c *Client) SaveResult(ctx context.Context, res model.Result) (int64, error) {
	body := resultRequest{
		WPM:            float64(res.WPM),
		RawWPM:         float64(res.RawWPM),
		Accuracy:       float64(res.Accuracy),
		Duration:       res.DurationSeconds,
		CorrectChars:   res.CorrectChars,
		IncorrectChars: res.IncorrectChars,
	}
	if err := c.do(ctx, http.MethodPost, saveResultPath, body, nil); err != nil {
		return 0, fmt.Errorf("save result: %w", err)
	}
	return 0, nil
}

// CustomTexts fetches the caller's custom texts. The API id is kept in
// RemoteID; ID is set only when the whole remote id is a decimal number.
func (c *Client) CustomTexts(ctx context.Context) ([]model.CustomText, error) {
	var payload []customTextResponse
	if err := c.do(ctx, http.MethodGet, customTextsPath, nil, &payload); err != nil {
		return nil, fmt.Errorf("fetch custom texts: %w", err)
	}
	texts := make([]model.CustomText, 0, len(payload))
	for _, p := range payload {
		id, err := strconv.ParseInt(p.ID, 10, 64)
		if err != nil || id < 0 {
			id = 0
		}
		texts = append(texts, model.CustomText{
			ID:        id,
			RemoteID:  p.ID,
			Content:   p.Content,
			Public:    p.Public,
			CreatedAt: p.CreatedAt.Time,
		})
	}
	return texts, nil
}

// AddCustomText uploads a new custom text.
func (c *Client) AddCustomText(ctx context.Context, content string, public bool) (int64, error) {
	if strings.TrimSpace(content) == "" {
		return 0, fmt.Errorf("add custom text: content is blank")
	}
	body := customTextRequest{Content: content, IsPublic: public}
	if err := c.do(ctx, http.MethodPost, customTextsPath, body, nil); err != nil {
		return 0, fmt.Errorf("add custom text: %w", err)
	}
	return 0, nil
}

// DeleteCustomText removes one of the caller's texts by its API id.
func (c *Client) DeleteCustomText(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("delete custom text: id is empty")
	}
	if err := c.do(ctx, http.MethodDelete, customTextsPath+"/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete custom text %s: %w", id, err)
	}
	return nil
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
