package corptools

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
	"reflect"
	"strings"
	"time"

	"log/slog"

	"github.com/golang-jwt/jwt/v5"
)

// Client issues signed requests against the CorpTools formation API.
// Every call is a single attempt: no retries, no backoff. Resilience
// policy belongs to wrapping layers, the base contract here is "at most
// one attempt, uniform result".
type Client struct {
	baseURL   string
	accessKey string
	secretKey string
	http      *http.Client
	logger    *slog.Logger
	debug     bool
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	AccessKey string
	SecretKey string
	Timeout   time.Duration
	Logger    *slog.Logger
	Debug     bool
}

// New constructs a Client. The timeout bounds the whole outbound call,
// callers get no other cancellation beyond their context.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		accessKey: opts.AccessKey,
		secretKey: opts.SecretKey,
		http:      &http.Client{Timeout: timeout},
		logger:    logger,
		debug:     opts.Debug,
	}
}

// Param is one query parameter. Order of a Param slice is preserved in
// the request URL, the API does not canonicalize.
type Param struct {
	Key   string
	Value any
}

// Result is the uniform outcome of a remote call. Exactly one of Data
// and Error is set; Error carries the upstream error body verbatim when
// one exists.
type Result struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
	Status  int             `json:"status"`
}

// token builds the request JWT: the configured access key rides in the
// header, the signed payload binds the request path to a SHA-256 digest
// of the exact body bytes (digest of the empty string when there is no
// body). Same path and body always produce the same digest.
func (c *Client) token(path string, body []byte) (string, error) {
	sum := sha256.Sum256(body)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"path":    path,
		"content": hex.EncodeToString(sum[:]),
	})
	tok.Header["access_key"] = c.accessKey
	return tok.SignedString([]byte(c.secretKey))
}

// encodeQuery serializes params in order. Slice values become repeated
// key[]=v pairs, maps and structs are JSON-stringified then escaped,
// scalars are escaped directly.
func encodeQuery(params []Param) (string, error) {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		key := url.QueryEscape(p.Key)
		if p.Value == nil {
			parts = append(parts, key+"=")
			continue
		}
		rv := reflect.ValueOf(p.Value)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			for i := 0; i < rv.Len(); i++ {
				parts = append(parts, key+"[]="+url.QueryEscape(fmt.Sprint(rv.Index(i).Interface())))
			}
		case reflect.Map, reflect.Struct:
			raw, err := json.Marshal(p.Value)
			if err != nil {
				return "", fmt.Errorf("encode query value %q: %w", p.Key, err)
			}
			parts = append(parts, key+"="+url.QueryEscape(string(raw)))
		default:
			parts = append(parts, key+"="+url.QueryEscape(fmt.Sprint(p.Value)))
		}
	}
	return strings.Join(parts, "&"), nil
}

// Call performs one signed request and normalizes the outcome. It never
// returns a Go error: transport failures and non-2xx responses both come
// back as Success=false results.
func (c *Client) Call(ctx context.Context, method, path string, body any, params []Param) Result {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return failure(fmt.Sprintf("encode request body: %v", err), http.StatusInternalServerError)
		}
		payload = encoded
	}

	token, err := c.token(path, payload)
	if err != nil {
		return failure(fmt.Sprintf("sign request: %v", err), http.StatusInternalServerError)
	}

	target := c.baseURL + path
	if len(params) > 0 {
		query, err := encodeQuery(params)
		if err != nil {
			return failure(err.Error(), http.StatusInternalServerError)
		}
		target += "?" + query
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return failure(fmt.Sprintf("build request: %v", err), http.StatusInternalServerError)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	if c.debug {
		c.logger.Debug("corptools request", "method", method, "url", target)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("corptools transport error", "method", method, "path", path, "error", err)
		return failure(err.Error(), http.StatusInternalServerError)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("corptools read error", "method", method, "path", path, "error", err)
		return failure(err.Error(), http.StatusInternalServerError)
	}

	if c.debug {
		c.logger.Debug("corptools response", "status", resp.StatusCode, "bytes", len(data))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("corptools upstream error", "method", method, "path", path, "status", resp.StatusCode)
		return Result{Success: false, Error: rawMessage(data), Status: resp.StatusCode}
	}
	return Result{Success: true, Data: rawMessage(data), Status: resp.StatusCode}
}

// Get issues a GET with optional ordered query parameters.
func (c *Client) Get(ctx context.Context, path string, params []Param) Result {
	return c.Call(ctx, http.MethodGet, path, nil, params)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) Result {
	return c.Call(ctx, http.MethodPost, path, body, nil)
}

// Patch issues a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) Result {
	return c.Call(ctx, http.MethodPatch, path, body, nil)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) Result {
	return c.Call(ctx, http.MethodPut, path, body, nil)
}

// Delete issues a DELETE with a JSON body.
func (c *Client) Delete(ctx context.Context, path string, body any) Result {
	return c.Call(ctx, http.MethodDelete, path, body, nil)
}

// rawMessage passes JSON bodies through verbatim and quotes anything
// else so the result always embeds cleanly in a JSON envelope.
func rawMessage(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(string(trimmed))
	return json.RawMessage(quoted)
}

func failure(message string, status int) Result {
	quoted, _ := json.Marshal(message)
	return Result{Success: false, Error: json.RawMessage(quoted), Status: status}
}

// ErrorString renders the error payload for plain-text surfaces.
func (r Result) ErrorString() string {
	if len(r.Error) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Error, &s); err == nil {
		return s
	}
	return string(r.Error)
}
