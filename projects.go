package swarm

import (
	"context"
	"net/url"

	"github.com/pbelskiy/helix-swarm/internal/api"
)

// Projects groups the project endpoints.
type Projects service

// List returns the projects visible to the current user; administrators see
// private ones too. workflow, when set, keeps only projects using it.
func (s *Projects) List(ctx context.Context, fields []string, workflow string) (Result, error) {
	q := api.Params{}
	q.SetJoined("fields", fields)
	q.Set("workflow", workflow)
	return s.client.do(ctx, &api.Call{Method: "GET", Path: "projects", Query: q.Values()})
}

// Info returns project id.
func (s *Projects) Info(ctx context.Context, id string, fields []string) (Result, error) {
	q := api.Params{}
	q.SetJoined("fields", fields)
	return s.client.do(ctx, &api.Call{
		Method: "GET",
		Path:   "projects/" + url.PathEscape(id),
		Query:  q.Values(),
	})
}
