package arcadedb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Aleph-Alpha/arcadedb/v1/observability"
)

// Logger defines the interface for logging operations in the arcadedb
// package. This interface allows the package to use any logging
// implementation that conforms to these methods; the v1/logger package
// provides the production one.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=arcadedb
type Logger interface {
	// Info logs informational messages, optionally with error and contextual fields
	Info(msg string, err error, fields ...map[string]interface{})

	// Debug logs debug-level messages, optionally with error and contextual fields
	Debug(msg string, err error, fields ...map[string]interface{})

	// Warn logs warning messages, optionally with error and contextual fields
	Warn(msg string, err error, fields ...map[string]interface{})

	// Error logs error messages with the associated error and optional contextual fields
	Error(msg string, err error, fields ...map[string]interface{})

	// Fatal logs critical errors that should terminate the application
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Response is the raw outcome of one transport call.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// Transport performs the actual network call. The default implementation
// speaks HTTP with basic auth; tests substitute their own. Connection
// establishment, TLS and timeouts are the transport's concern, not the
// driver core's.
type Transport interface {
	Send(ctx context.Context, method, path string, body []byte, headers map[string]string) (*Response, error)
}

// httpTransport is the default Transport over net/http.
type httpTransport struct {
	base        string
	username    string
	password    string
	contentType string
	client      *http.Client
}

func newHTTPTransport(cfg Config) *httpTransport {
	return &httpTransport{
		base:        fmt.Sprintf("%s://%s:%s", cfg.Connection.Protocol, cfg.Connection.Host, cfg.Connection.Port),
		username:    cfg.Connection.Username,
		password:    cfg.Connection.Password,
		contentType: cfg.ContentType,
		client:      &http.Client{},
	}
}

// Send implements Transport.
func (t *httpTransport) Send(ctx context.Context, method, path string, body []byte, headers map[string]string) (*Response, error) {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.base+path, reader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(t.username, t.password)
	if body != nil {
		req.Header.Set("Content-Type", t.contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       buf.Bytes(),
		Header:     resp.Header,
	}, nil
}

// Client is the ArcadeDB driver. All exported methods are safe for
// concurrent use; transaction sessions are owned by the caller that began
// them and must not be shared across concurrent logical operations.
type Client struct {
	cfg       Config
	transport Transport
	logger    Logger
	observer  observability.Observer
}

// NewClient constructs a client from the configuration, applying package
// defaults for unset fields, and verifies that the server is reachable with
// the given credentials. A credential rejection surfaces as ErrLoginFailed,
// any other reachability problem as ErrConnection.
func NewClient(cfg Config, log Logger) (*Client, error) {
	cfg = cfg.withDefaults()

	if cfg.Connection.Host == "" {
		return nil, newValidationError("host is required")
	}

	c := &Client{
		cfg:       cfg,
		transport: newHTTPTransport(cfg),
		logger:    log,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := c.serverCommand(ctx, "list databases"); err != nil {
		if errors.Is(err, ErrLoginFailed) {
			return nil, err
		}
		return nil, &Error{Kind: ErrConnection, Message: "unable to connect to server", cause: err}
	}

	c.logger.Info("connected to ArcadeDB", nil, map[string]interface{}{
		"host":     cfg.Connection.Host,
		"port":     cfg.Connection.Port,
		"database": cfg.Connection.Database,
	})
	return c, nil
}

// WithObserver attaches an observer receiving one OperationContext per
// completed driver operation. Returns the client for chaining.
func (c *Client) WithObserver(obs observability.Observer) *Client {
	c.observer = obs
	return c
}

// WithTransport replaces the transport. Intended for tests and for callers
// that need custom TLS or timeout behaviour.
func (c *Client) WithTransport(t Transport) *Client {
	c.transport = t
	return c
}

// Database returns the database name this client addresses.
func (c *Client) Database() string {
	return c.cfg.Connection.Database
}

// post issues one POST and classifies non-2xx responses. Transport-level
// failures (no response at all) surface as ErrConnection.
func (c *Client) post(ctx context.Context, path string, payload interface{}, headers map[string]string, ectx errorContext) (*Response, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, newValidationError("payload not serializable: %v", err)
		}
	}

	resp, err := c.transport.Send(ctx, http.MethodPost, c.cfg.APIBase+path, body, headers)
	if err != nil {
		return nil, newConnectionError(err)
	}
	if resp.StatusCode >= 400 {
		srvErr := parseErrorResponse(resp.StatusCode, resp.Body, ectx)
		c.logger.Error("server returned error response", srvErr, map[string]interface{}{
			"path":   path,
			"status": resp.StatusCode,
		})
		return nil, srvErr
	}
	return resp, nil
}

// get issues one GET and classifies non-2xx responses.
func (c *Client) get(ctx context.Context, path string) (*Response, error) {
	resp, err := c.transport.Send(ctx, http.MethodGet, c.cfg.APIBase+path, nil, nil)
	if err != nil {
		return nil, newConnectionError(err)
	}
	if resp.StatusCode >= 400 {
		return nil, parseErrorResponse(resp.StatusCode, resp.Body, errorContext{})
	}
	return resp, nil
}

// Close releases client resources. The HTTP transport holds no persistent
// connections beyond Go's keep-alive pool, so this is currently a log-only
// operation kept for lifecycle symmetry.
func (c *Client) Close() {
	c.logger.Info("closing ArcadeDB client", nil, nil)
}
