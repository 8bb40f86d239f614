package llm

import "context"

// Request accumulates a chat request. Obtained via Client.Chat or Ctx.LLM;
// not safe for concurrent mutation, build and send on one goroutine.
type Request struct {
	client *Client
	system string
	users  []string
}

// System sets the system prompt. Calling it again overwrites.
func (r *Request) System(msg string) *Request {
	r.system = msg
	return r
}

// User appends a user message.
func (r *Request) User(msg string) *Request {
	r.users = append(r.users, msg)
	return r
}

// Send performs the request and returns the assistant's response text.
// Transport failures and provider 429/5xx statuses come back as transient
// errors, auth and malformed-request statuses as invalid, so agents can
// decide between Retry and Fail.
func (r *Request) Send(ctx context.Context) (string, error) {
	return r.client.send(ctx, r.system, r.users)
}
