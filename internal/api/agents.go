package api

import (
	"context"
	"fmt"
)

// Agents lists the agent names the backend serves.
func (c *Client) Agents(ctx context.Context) ([]string, error) {
	var reply struct {
		Agents []string `json:"agents"`
	}
	if err := c.get(ctx, "/agents", &reply); err != nil {
		return nil, fmt.Errorf("fetching agents: %w", err)
	}
	return reply.Agents, nil
}
