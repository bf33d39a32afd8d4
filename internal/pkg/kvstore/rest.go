package kvstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/shopauth/internal/pkg/goerror"
)

var (
	// ErrRESTURLRequired is returned when the REST endpoint is not configured.
	ErrRESTURLRequired = errors.New("kvstore: rest url is required")
	// ErrRESTTokenRequired is returned when the REST bearer token is not configured.
	ErrRESTTokenRequired = errors.New("kvstore: rest token is required")
)

// RESTOptions configures the REST driver.
type RESTOptions struct {
	// URL is the REST endpoint, e.g. https://<db>.upstash.io.
	URL string
	// Token is sent as "Authorization: Bearer <token>".
	Token string
	// HTTPClient overrides http.DefaultClient.
	HTTPClient *http.Client
}

// RESTError is a failure reported by the REST endpoint, either through a
// non-2xx status or an "error" field in the body.
type RESTError struct {
	StatusCode int
	Message    string
}

func (e *RESTError) Error() string {
	return fmt.Sprintf("kvstore: rest status %d: %s", e.StatusCode, e.Message)
}

// REST is a Store that speaks the Upstash-compatible Redis REST protocol:
// every command is POSTed as a JSON array to the endpoint root.
type REST struct {
	url    string
	token  string
	client *http.Client
}

type restResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// NewREST validates opts and builds a REST store. It makes no network call.
func NewREST(opts RESTOptions) (*REST, error) {
	url := strings.TrimRight(strings.TrimSpace(opts.URL), "/")
	if url == "" {
		return nil, goerror.NewConfiguration(ErrRESTURLRequired)
	}
	if strings.TrimSpace(opts.Token) == "" {
		return nil, goerror.NewConfiguration(ErrRESTTokenRequired)
	}

	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	return &REST{url: url, token: opts.Token, client: client}, nil
}

// Set runs SET key value EX <seconds>.
func (r *REST) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	secs := int64(ttl / time.Second)
	if secs < 1 {
		secs = 1
	}
	_, err := r.do(ctx, "SET", key, value, "EX", strconv.FormatInt(secs, 10))
	return err
}

// Get runs GET key.
func (r *REST) Get(ctx context.Context, key string) (string, error) {
	raw, err := r.do(ctx, "GET", key)
	if err != nil {
		return "", err
	}

	if len(raw) == 0 || string(raw) == "null" {
		return "", ErrNil
	}

	var val string
	if err := json.Unmarshal(raw, &val); err != nil {
		return "", fmt.Errorf("kvstore: decode get result: %w", err)
	}

	return val, nil
}

// Del runs DEL key.
func (r *REST) Del(ctx context.Context, key string) error {
	_, err := r.do(ctx, "DEL", key)
	return err
}

// CompareAndDelete runs the compare-and-delete script through EVAL.
func (r *REST) CompareAndDelete(ctx context.Context, key, expected string) (bool, error) {
	raw, err := r.do(ctx, "EVAL", compareAndDeleteScript, "1", key, expected)
	if err != nil {
		return false, err
	}

	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return false, fmt.Errorf("kvstore: decode eval result: %w", err)
	}

	return n == 1, nil
}

// Close releases idle connections.
func (r *REST) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

func (r *REST) do(ctx context.Context, args ...string) (json.RawMessage, error) {
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	//nolint:errcheck // read-only body
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var out restResponse
	decodeErr := json.Unmarshal(body, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(out.Error)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &RESTError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("kvstore: decode response: %w", decodeErr)
	}
	if out.Error != "" {
		return nil, &RESTError{StatusCode: resp.StatusCode, Message: out.Error}
	}

	return out.Result, nil
}
