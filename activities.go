package swarm

import (
	"context"

	"github.com/pbelskiy/helix-swarm/internal/api"
)

// Activities groups the activity stream endpoints.
type Activities service

// ActivityListOptions filters Activities.List. Zero fields are omitted.
type ActivityListOptions struct {
	// Change filters by associated changelist.
	Change int
	// Stream such as "user-alice", "personal-alice", "review-1234" or
	// "project-exampleproject".
	Stream string
	// Category such as "change", "comment", "job" or "review".
	Category string
	// After seeks past the given activity ID, usually lastSeen of a previous page.
	After int
	// Limit caps the number of entries. Server default: 100.
	Limit  int
	Fields []string
}

func (o *ActivityListOptions) params() api.Params {
	p := api.Params{}
	if o == nil {
		return p
	}
	p.SetInt("change", o.Change)
	p.Set("stream", o.Stream)
	p.Set("type", o.Category)
	p.SetInt("after", o.After)
	p.SetInt("max", o.Limit)
	p.SetJoined("fields", o.Fields)
	return p
}

// List retrieves the activity list. opts may be nil.
func (s *Activities) List(ctx context.Context, opts *ActivityListOptions) (Result, error) {
	return s.client.do(ctx, &api.Call{
		Method: "GET",
		Path:   "activity",
		Query:  opts.params().Values(),
	})
}
