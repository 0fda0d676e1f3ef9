package check

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/uservet/uservet/internal/client"
)

// DefaultChecks returns the built-in checks in execution order.
func DefaultChecks() []Definition {
	return []Definition{
		{
			Name:    "create-user",
			Summary: "Create a user with unique data; accept created or already-exists.",
			Run:     runCreateUser,
		},
		{
			Name:    "missing-header",
			Summary: "Omit the roll-number header; the endpoint must reject with 401.",
			Run:     runMissingHeader,
		},
		{
			Name:    "duplicate-phone",
			Summary: "Reuse a phone number; the second request must fail with 400.",
			Run:     runDuplicatePhone,
		},
	}
}

// created reports whether the status code means the user was created.
func created(status int) bool {
	return status == http.StatusOK || status == http.StatusCreated
}

// alreadyExists reports whether the response is the endpoint's persistent
// "user already exists" rejection. The whole body is searched, not just the
// message field, because the endpoint has been observed returning both shapes.
func alreadyExists(resp *client.Response) bool {
	return resp.StatusCode == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(resp.Text()), "user already exists")
}

// runCreateUser sends a fresh user and accepts creation or the endpoint's
// persistent already-exists rejection.
func runCreateUser(ctx context.Context, env Env) Verdict {
	user := client.User{
		FirstName:   "StandardTestUser",
		LastName:    "StandardTestLast",
		PhoneNumber: env.Phone(),
		EmailID:     env.Email(),
	}

	resp, err := env.Harness.CreateUser(ctx, user)
	if err != nil {
		return noResponse(err)
	}

	switch {
	case created(resp.StatusCode):
		return pass(fmt.Sprintf("user created (status %d)", resp.StatusCode))
	case alreadyExists(resp):
		return pass("user already exists (status 400)")
	default:
		return unexpectedStatus("200/201 or 400 (user exists)", resp)
	}
}

// runMissingHeader sends a valid body without the roll-number header and
// requires a 401.
func runMissingHeader(ctx context.Context, env Env) Verdict {
	user := client.User{
		FirstName:   "Jane",
		LastName:    "Doe",
		PhoneNumber: env.Phone(),
		EmailID:     env.Email(),
	}

	resp, err := env.Harness.CreateUser(ctx, user, client.WithoutRollNumber())
	if err != nil {
		return noResponse(err)
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return unexpectedStatus("401", resp)
	}
	return pass("request without roll-number rejected with 401")
}

// runDuplicatePhone creates a user, then reuses its phone number with fresh
// remaining fields. The second request must be rejected with a 400 whose
// message names the phone number or the existing user. Non-JSON error bodies
// are tolerated: the status assertion stands and the message check is skipped.
func runDuplicatePhone(ctx context.Context, env Env) Verdict {
	phone := env.Phone()

	setup := client.User{
		FirstName:   "SetupUser",
		LastName:    "SetupLast",
		PhoneNumber: phone,
		EmailID:     env.Email(),
	}
	setupResp, err := env.Harness.CreateUser(ctx, setup)
	if err != nil {
		return noResponse(err)
	}
	if !created(setupResp.StatusCode) && !alreadyExists(setupResp) {
		return fail(
			fmt.Sprintf("setup expected 200/201 or 400 (user exists), got %d", setupResp.StatusCode),
			setupResp.Text(),
		)
	}

	dup := client.User{
		FirstName:   "NewUser",
		LastName:    "NewLast",
		PhoneNumber: phone,
		EmailID:     env.Email(),
	}
	resp, err := env.Harness.CreateUser(ctx, dup)
	if err != nil {
		return noResponse(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		return unexpectedStatus("400", resp)
	}

	if _, ok := resp.JSON(); !ok {
		return Verdict{
			Status:  StatusPass,
			Summary: "duplicate phone rejected with 400",
			Detail:  "error body is not JSON; message content not asserted",
		}
	}

	msg := resp.Message()
	if !strings.Contains(msg, "phone number") && !strings.Contains(msg, "user already exists") {
		return fail(
			"expected error message to mention the phone number or existing user",
			fmt.Sprintf("message: %q", msg),
		)
	}

	return pass("duplicate phone rejected with 400")
}
