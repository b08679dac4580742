// Package hadi implements the client for the Hadi SMS records API.
package hadi

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"time"

	"hadi_poller/internal/model"
)

// TimeLayout is the timestamp format used by the Hadi API.
const TimeLayout = "2006-01-02 15:04:05"

var otpRe = regexp.MustCompile(`\b(\d{4,8})\b`)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches SMS records from the Hadi API.
type Client struct {
	client  HTTPClient
	apiURL  string
	token   string
	records int
	loc     *time.Location
	now     func() time.Time
}

// New creates a Client. records bounds how many records one fetch requests.
func New(client HTTPClient, apiURL, token string, records int, loc *time.Location) *Client {
	return &Client{
		client:  client,
		apiURL:  apiURL,
		token:   token,
		records: records,
		loc:     loc,
		now:     time.Now,
	}
}

// Fetch requests records in the [from, to] window and returns them sorted by
// their timestamp, oldest first.
func (c *Client) Fetch(ctx context.Context, from, to time.Time) ([]model.Record, error) {
	u, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	q := u.Query()
	q.Set("token", c.token)
	q.Set("dt1", from.In(c.loc).Format(TimeLayout))
	q.Set("dt2", to.In(c.loc).Format(TimeLayout))
	q.Set("records", strconv.Itoa(c.records))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	raws, err := decodeRecords(body)
	if err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, len(raws))
	for _, raw := range raws {
		records = append(records, c.extract(raw))
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ReceivedAt < records[j].ReceivedAt
	})
	return records, nil
}

// rawRecord tolerates the field name variants the API is known to emit.
type rawRecord struct {
	Num     string `json:"num"`
	Number  string `json:"number"`
	From    string `json:"from"`
	Message string `json:"message"`
	Msg     string `json:"msg"`
	Body    string `json:"body"`
	DT      string `json:"dt"`
}

// decodeRecords handles both response shapes: a bare array, or an envelope
// {"status":"success","data":[...]}. Any other well-formed JSON yields zero
// records.
func decodeRecords(body []byte) ([]rawRecord, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var raws []rawRecord
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return raws, nil
	}

	var env struct {
		Status string      `json:"status"`
		Data   []rawRecord `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if env.Status != "success" {
		return nil, nil
	}
	return env.Data, nil
}

func (c *Client) extract(raw rawRecord) model.Record {
	number := firstNonEmpty(raw.Num, raw.Number, raw.From)
	message := firstNonEmpty(raw.Message, raw.Msg, raw.Body)

	receivedAt := raw.DT
	if receivedAt == "" {
		receivedAt = c.now().In(c.loc).Format(TimeLayout)
	}

	var otp string
	if m := otpRe.FindStringSubmatch(message); m != nil {
		otp = m[1]
	}

	return model.Record{
		Number:     number,
		Message:    message,
		OTP:        otp,
		ReceivedAt: receivedAt,
		Hash:       RecordHash(receivedAt, number, message),
	}
}

// RecordHash returns the dedup identifier for a record.
func RecordHash(receivedAt, number, message string) string {
	h := sha256.Sum256([]byte(receivedAt + "|" + number + "|" + message))
	return hex.EncodeToString(h[:])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
