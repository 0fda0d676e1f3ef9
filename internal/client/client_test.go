package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func validUser() User {
	return User{
		FirstName:   "Jane",
		LastName:    "Doe",
		PhoneNumber: 9_123_456_789,
		EmailID:     "jane.doe@example.com",
	}
}

func TestCreateUser_SendsJSONBodyAndHeaders(t *testing.T) {
	var gotContentType, gotRollNumber string
	var gotBody User
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotRollNumber = r.Header.Get(RollNumberHeader)
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"User created"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "2")
	resp, err := c.CreateUser(context.Background(), validUser())
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want %q", gotContentType, "application/json")
	}
	if gotRollNumber != "2" {
		t.Errorf("roll-number = %q, want %q", gotRollNumber, "2")
	}
	if gotBody != validUser() {
		t.Errorf("request body = %+v, want %+v", gotBody, validUser())
	}
}

func TestCreateUser_WithoutRollNumberOmitsHeader(t *testing.T) {
	var hasHeader bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasHeader = r.Header[http.CanonicalHeaderKey(RollNumberHeader)]
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, "2")
	resp, err := c.CreateUser(context.Background(), validUser(), WithoutRollNumber())
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if hasHeader {
		t.Error("roll-number header should be omitted")
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestCreateUser_ErrorStatusIsNotAnError(t *testing.T) {
	// Any received response is the caller's to assert on, whatever its status.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"User already exists"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "2")
	resp, err := c.CreateUser(context.Background(), validUser())
	if err != nil {
		t.Fatalf("CreateUser() error = %v, want nil for a 400 response", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if got := resp.Message(); got != "user already exists" {
		t.Errorf("Message() = %q, want %q", got, "user already exists")
	}
}

func TestCreateUser_UnreachableHostReturnsTransportError(t *testing.T) {
	// Start and immediately stop a server to get a port nothing listens on.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url, "2")
	resp, err := c.CreateUser(context.Background(), validUser())

	if resp != nil {
		t.Errorf("response = %+v, want nil on transport failure", resp)
	}
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %v (%T), want *TransportError", err, err)
	}
	if terr.URL != url {
		t.Errorf("TransportError.URL = %q, want %q", terr.URL, url)
	}
}

func TestCreateUser_TimeoutReturnsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(srv.URL, "2", WithTimeout(20*time.Millisecond))
	_, err := c.CreateUser(context.Background(), validUser())

	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %v (%T), want *TransportError on timeout", err, err)
	}
}

func TestCreateUser_InvalidBodyRejectedBeforeSending(t *testing.T) {
	sent := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sent = true
	}))
	defer srv.Close()

	tests := []struct {
		name string
		user User
	}{
		{name: "9-digit phone", user: User{FirstName: "A", LastName: "B", PhoneNumber: 812_345_678, EmailID: "a@example.com"}},
		{name: "11-digit phone", user: User{FirstName: "A", LastName: "B", PhoneNumber: 91_234_567_890, EmailID: "a@example.com"}},
		{name: "leading digit not 9", user: User{FirstName: "A", LastName: "B", PhoneNumber: 8_123_456_789, EmailID: "a@example.com"}},
		{name: "bad email", user: User{FirstName: "A", LastName: "B", PhoneNumber: 9_123_456_789, EmailID: "not-an-email"}},
		{name: "missing name", user: User{LastName: "B", PhoneNumber: 9_123_456_789, EmailID: "a@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(srv.URL, "2")
			_, err := c.CreateUser(context.Background(), tt.user)
			if err == nil {
				t.Fatal("CreateUser() should reject an invalid body")
			}
			var terr *TransportError
			if errors.As(err, &terr) {
				t.Errorf("validation failure should not be a *TransportError, got %v", err)
			}
			if sent {
				t.Error("invalid body should never reach the endpoint")
			}
		})
	}
}

func TestResponse_JSONAndMessage(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantJSON    bool
		wantMessage string
	}{
		{name: "json with message", body: `{"message":"Phone Number taken"}`, wantJSON: true, wantMessage: "phone number taken"},
		{name: "json without message", body: `{"status":"ok"}`, wantJSON: true, wantMessage: ""},
		{name: "non-json body", body: "Bad Gateway", wantJSON: false, wantMessage: ""},
		{name: "empty body", body: "", wantJSON: false, wantMessage: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &Response{StatusCode: 400, Body: []byte(tt.body)}

			if _, ok := resp.JSON(); ok != tt.wantJSON {
				t.Errorf("JSON() ok = %v, want %v", ok, tt.wantJSON)
			}
			if got := resp.Message(); got != tt.wantMessage {
				t.Errorf("Message() = %q, want %q", got, tt.wantMessage)
			}
			if got := resp.Text(); got != tt.body {
				t.Errorf("Text() = %q, want %q", got, tt.body)
			}
		})
	}
}
