package swarm

import (
	"context"

	"github.com/pbelskiy/helix-swarm/internal/api"
)

// Servers groups the server endpoints.
type Servers service

// List returns the configured Perforce servers. Requires API v9.
func (s *Servers) List(ctx context.Context) (Result, error) {
	if err := s.client.require(9); err != nil {
		return Result{}, err
	}
	return s.client.do(ctx, &api.Call{Method: "GET", Path: "servers"})
}
