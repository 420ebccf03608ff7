// Package gateway is the HTTP adapter for the upstream SMS provider. It
// normalizes every outcome (provider rejection, transport error, timeout)
// into a tagged Result; nothing escapes this boundary as a panic or error.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Recipient carries a stable per-message index so delivery callbacks can be
// correlated to a destination.
type Recipient struct {
	RecipientID int    `json:"recipient_id"`
	DestAddr    string `json:"dest_addr"`
}

// Result is the normalized provider outcome. Successful=false covers both
// provider-rejected payloads and transport failures; the caller decides
// retry policy (this adapter never retries).
type Result struct {
	Successful bool
	RequestID  string
	Code       int
	Message    string
	Valid      int
	Invalid    int
	Duplicates int
}

type Client interface {
	Send(ctx context.Context, srcAddr, message string, recipients []Recipient) Result
}

type sendRequest struct {
	SourceAddr   string      `json:"source_addr"`
	ScheduleTime string      `json:"schedule_time"`
	Encoding     int         `json:"encoding"`
	Message      string      `json:"message"`
	Recipients   []Recipient `json:"recipients"`
}

type sendResponse struct {
	Successful bool   `json:"successful"`
	RequestID  int64  `json:"request_id"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Valid      int    `json:"valid"`
	Invalid    int    `json:"invalid"`
	Duplicates int    `json:"duplicates"`
}

type HTTPClient struct {
	baseURL   string
	sendPath  string
	apiKey    string
	secretKey string
	client    *http.Client
}

func NewHTTPClient(baseURL, sendPath, apiKey, secretKey string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{
		baseURL:   baseURL,
		sendPath:  sendPath,
		apiKey:    apiKey,
		secretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
	}
}

var _ Client = (*HTTPClient)(nil)

func failure(code int, msg string) Result {
	return Result{Successful: false, Code: code, Message: msg}
}

func (c *HTTPClient) Send(ctx context.Context, srcAddr, message string, recipients []Recipient) Result {
	body, err := json.Marshal(sendRequest{
		SourceAddr:   srcAddr,
		ScheduleTime: "",
		Encoding:     0,
		Message:      message,
		Recipients:   recipients,
	})
	if err != nil {
		return failure(0, fmt.Sprintf("marshal payload: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.sendPath, bytes.NewReader(body))
	if err != nil {
		return failure(0, fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.apiKey, c.secretKey)

	res, err := c.client.Do(req)
	if err != nil {
		// timeouts and connection errors land here
		return failure(0, fmt.Sprintf("gateway unreachable: %v", err))
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return failure(res.StatusCode, fmt.Sprintf("read response: %v", err))
	}

	var resp sendResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return failure(res.StatusCode, "unparseable provider response")
	}

	if res.StatusCode/100 != 2 || !resp.Successful {
		msg := resp.Message
		if msg == "" {
			msg = "provider rejected request, status " + strconv.Itoa(res.StatusCode)
		}
		return Result{Successful: false, Code: resp.Code, Message: msg}
	}

	return Result{
		Successful: true,
		RequestID:  strconv.FormatInt(resp.RequestID, 10),
		Code:       resp.Code,
		Message:    resp.Message,
		Valid:      resp.Valid,
		Invalid:    resp.Invalid,
		Duplicates: resp.Duplicates,
	}
}
