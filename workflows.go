package swarm

import (
	"context"
	"strconv"

	"github.com/pbelskiy/helix-swarm/internal/api"
)

// Workflows groups the workflow endpoints. All of them require API v9.
type Workflows service

// List returns workflows. noCache forces a fresh query on the server.
func (s *Workflows) List(ctx context.Context, fields []string, noCache bool) (Result, error) {
	if err := s.client.require(9); err != nil {
		return Result{}, err
	}
	q := api.Params{}
	q.SetJoined("fields", fields)
	q.SetBool("noCache", noCache)
	return s.client.do(ctx, &api.Call{Method: "GET", Path: "workflows", Query: q.Values()})
}

// Info returns workflow id.
func (s *Workflows) Info(ctx context.Context, id int, fields []string) (Result, error) {
	if err := s.client.require(9); err != nil {
		return Result{}, err
	}
	q := api.Params{}
	q.SetJoined("fields", fields)
	return s.client.do(ctx, &api.Call{
		Method: "GET",
		Path:   "workflows/" + strconv.Itoa(id),
		Query:  q.Values(),
	})
}
