package api

import (
	"context"
)

type askRequest struct {
	Agent    string `json:"agent"`
	Question string `json:"question"`
}

// Ask sends a question to the named agent and returns its answer. The call
// blocks for the full retrieval round trip, so the context should carry the
// caller's deadline.
func (c *Client) Ask(ctx context.Context, agent, question string) (*Answer, error) {
	var ans Answer
	if err := c.postJSON(ctx, "/chat/ask", askRequest{Agent: agent, Question: question}, &ans); err != nil {
		return nil, err
	}
	return &ans, nil
}
