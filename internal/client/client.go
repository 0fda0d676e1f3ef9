// Package client issues user-creation requests against the target endpoint.
//
// The client owns transport concerns only: serialization, headers, timeout, and
// transcript logging. It never judges whether a response is correct; checks do
// that. A transport-level failure (DNS, refused connection, timeout) is returned
// as a *TransportError so callers can distinguish "no response" from any
// response the endpoint produced.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single request, matching the endpoint's observed
// worst-case latency with headroom.
const DefaultTimeout = 15 * time.Second

// RollNumberHeader is the identification header the endpoint requires.
const RollNumberHeader = "roll-number"

// maxBodyBytes caps how much of a response body is read for assertions.
const maxBodyBytes = 1 << 20

// User is the wire body for a user-creation request. Validation tags encode
// the generator's invariants: a 10-digit phone number starting with 9 and a
// well-formed email.
type User struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	PhoneNumber int64  `json:"phoneNumber" validate:"required,gte=9000000000,lte=9999999999"`
	EmailID     string `json:"emailId" validate:"required,email"`
}

// Response holds whatever the endpoint returned, regardless of status code.
type Response struct {
	StatusCode int
	Body       []byte
}

// JSON parses the body as a JSON object. ok is false for empty or non-JSON
// bodies; those are tolerated, not errors.
func (r *Response) JSON() (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal(r.Body, &m); err != nil {
		return nil, false
	}
	return m, true
}

// Message returns the lower-cased "message" field of a JSON body, or "" when
// the body is empty, non-JSON, or has no message field.
func (r *Response) Message() string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Body, &envelope); err != nil {
		return ""
	}
	return strings.ToLower(envelope.Message)
}

// Text returns the raw body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// TransportError indicates the request never produced a response.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("client: no response from %s: %s", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client issues synchronous POSTs to a single user-creation endpoint.
type Client struct {
	baseURL    string
	rollNumber string
	hc         *http.Client
	log        zerolog.Logger
	validate   *validator.Validate
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.hc.Timeout = d }
}

// WithLogger sets the transcript logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// New creates a Client for the given endpoint and roll number.
func New(baseURL, rollNumber string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		rollNumber: rollNumber,
		hc:         &http.Client{Timeout: DefaultTimeout},
		log:        zerolog.Nop(),
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// requestSpec holds per-request header overrides.
type requestSpec struct {
	omitRollNumber bool
	headers        map[string]string
}

// RequestOption adjusts a single request.
type RequestOption func(*requestSpec)

// WithoutRollNumber omits the roll-number header from the request.
func WithoutRollNumber() RequestOption {
	return func(s *requestSpec) { s.omitRollNumber = true }
}

// WithHeader sets an extra header on the request.
func WithHeader(key, value string) RequestOption {
	return func(s *requestSpec) {
		if s.headers == nil {
			s.headers = map[string]string{}
		}
		s.headers[key] = value
	}
}

// CreateUser POSTs the user to the endpoint and returns whatever came back.
// Any received response is returned with a nil error, whatever its status.
// A transport failure is logged and returned as a *TransportError; callers
// assert on it rather than handling a panic or a half-built response.
func (c *Client) CreateUser(ctx context.Context, user User, opts ...RequestOption) (*Response, error) {
	spec := requestSpec{}
	for _, opt := range opts {
		opt(&spec)
	}

	if err := c.validate.Struct(user); err != nil {
		return nil, fmt.Errorf("client: invalid user body: %w", err)
	}

	body, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("client: encoding user body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("client: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if !spec.omitRollNumber {
		req.Header.Set(RollNumberHeader, c.rollNumber)
	}
	for k, v := range spec.headers {
		req.Header.Set(k, v)
	}

	c.logRequest(req, body)

	resp, err := c.hc.Do(req)
	if err != nil {
		terr := &TransportError{URL: c.baseURL, Err: err}
		c.log.Error().Str("url", c.baseURL).Err(err).Msg("request failed")
		return nil, terr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		terr := &TransportError{URL: c.baseURL, Err: fmt.Errorf("reading body: %w", err)}
		c.log.Error().Str("url", c.baseURL).Err(err).Msg("reading response failed")
		return nil, terr
	}

	c.logResponse(resp.StatusCode, raw)

	return &Response{StatusCode: resp.StatusCode, Body: raw}, nil
}

// logRequest records the outgoing request transcript at debug level.
func (c *Client) logRequest(req *http.Request, body []byte) {
	headers := map[string]string{}
	for k := range req.Header {
		headers[k] = req.Header.Get(k)
	}
	c.log.Debug().
		Str("url", req.URL.String()).
		Interface("headers", headers).
		RawJSON("body", body).
		Msg("sending request")
}

// logResponse records the response transcript, falling back to raw text for
// non-JSON bodies.
func (c *Client) logResponse(status int, body []byte) {
	ev := c.log.Debug().Int("status", status)
	switch {
	case len(body) == 0:
		ev.Str("body", "")
	case json.Valid(body):
		ev.RawJSON("body", body)
	default:
		ev.Str("body", string(body))
	}
	ev.Msg("received response")
}
