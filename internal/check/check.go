// Package check defines the scripted endpoint checks and runs them in order.
package check

import (
	"context"
	"fmt"

	"github.com/uservet/uservet/internal/client"
)

// Status is the outcome of a single check.
type Status string

const (
	StatusPass  Status = "PASS"
	StatusFail  Status = "FAIL"  // an assertion did not hold
	StatusError Status = "ERROR" // the endpoint never produced a response
)

// Verdict carries the outcome of a check with enough detail to diagnose it.
type Verdict struct {
	Status  Status
	Summary string // one-line outcome
	Detail  string // response text or failure explanation
}

// Harness issues user-creation requests. client.Client satisfies it; tests
// substitute stubs.
type Harness interface {
	CreateUser(ctx context.Context, user client.User, opts ...client.RequestOption) (*client.Response, error)
}

// Env provides a check with its harness and data generators. Generators are
// injectable so tests can pin the values a check sends.
type Env struct {
	Harness Harness
	Phone   func() int64
	Email   func() string
}

// Definition describes one scripted check.
type Definition struct {
	Name    string
	Summary string
	Run     func(ctx context.Context, env Env) Verdict
}

// Find returns the definition with the given name from defs.
func Find(defs []Definition, name string) (Definition, bool) {
	for _, d := range defs {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// pass builds a passing verdict.
func pass(summary string) Verdict {
	return Verdict{Status: StatusPass, Summary: summary}
}

// fail builds a failing verdict with the response text as detail.
func fail(summary, detail string) Verdict {
	return Verdict{Status: StatusFail, Summary: summary, Detail: detail}
}

// noResponse builds an ERROR verdict for a transport failure. The harness has
// already logged the failure; the verdict carries it to the display.
func noResponse(err error) Verdict {
	return Verdict{
		Status:  StatusError,
		Summary: "no response from endpoint (connection failed or timed out)",
		Detail:  err.Error(),
	}
}

// unexpectedStatus builds a FAIL verdict naming the status mismatch.
func unexpectedStatus(want string, resp *client.Response) Verdict {
	return fail(
		fmt.Sprintf("expected %s, got %d", want, resp.StatusCode),
		resp.Text(),
	)
}
