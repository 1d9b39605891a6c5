package swarm

import (
	"context"
	"errors"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/pbelskiy/helix-swarm/internal/api"
)

// Groups groups the Perforce group endpoints. All of them require API v2.
type Groups service

// GroupListOptions filters Groups.List.
type GroupListOptions struct {
	// After seeks past the given group ID.
	After  string
	Limit  int
	Fields []string
	// Keywords matches group ID, name or description.
	Keywords string
}

// GroupOptions describes the members and settings of a group for
// Groups.Create and Groups.Edit. Zero fields are left unchanged.
type GroupOptions struct {
	Users       []string
	Owners      []string
	Subgroups   []string
	Name        string
	Description string
	// EmailAddress of the group.
	EmailAddress string
	// NotifyReviews emails members when a new review is requested.
	NotifyReviews bool
	// NotifyCommits emails members when a change is committed.
	NotifyCommits bool
	// UseMailingList sends to EmailAddress instead of expanding members.
	UseMailingList bool
}

var errNoGroupMembers = errors.New("at least one of users, owners, or subgroups is required")

// body encodes the options with Swarm's flattened config keys.
func (o *GroupOptions) body() map[string]any {
	data := map[string]any{}
	if o == nil {
		return data
	}
	if len(o.Users) > 0 {
		data["Users"] = o.Users
	}
	if len(o.Owners) > 0 {
		data["Owners"] = o.Owners
	}
	if len(o.Subgroups) > 0 {
		data["Subgroups"] = o.Subgroups
	}
	if o.Name != "" {
		data["config[name]"] = o.Name
	}
	if o.Description != "" {
		data["config[description]"] = o.Description
	}
	if o.EmailAddress != "" {
		data["config[emailAddress]"] = o.EmailAddress
	}
	if o.NotifyReviews {
		data["config[emailFlags][reviews]"] = true
	}
	if o.NotifyCommits {
		data["config[emailFlags][commits]"] = true
	}
	if o.UseMailingList {
		data["config[useMailingList]"] = true
	}
	return data
}

// List returns the groups visible to the current user.
func (s *Groups) List(ctx context.Context, opts *GroupListOptions) (Result, error) {
	if err := s.client.require(2); err != nil {
		return Result{}, err
	}
	q := api.Params{}
	if opts != nil {
		q.Set("after", opts.After)
		q.SetInt("max", opts.Limit)
		q.SetJoined("fields", opts.Fields)
		q.Set("keywords", opts.Keywords)
	}
	return s.client.do(ctx, &api.Call{Method: "GET", Path: "groups", Query: q.Values()})
}

// Info returns group id, limited to fields when given.
func (s *Groups) Info(ctx context.Context, id string, fields []string) (Result, error) {
	if err := s.client.require(2); err != nil {
		return Result{}, err
	}
	q := api.Params{}
	q.SetJoined("fields", fields)
	return s.client.do(ctx, &api.Call{
		Method: "GET",
		Path:   "groups/" + url.PathEscape(id),
		Query:  q.Values(),
	})
}

// Create creates group id. opts must name at least one user, owner or subgroup.
func (s *Groups) Create(ctx context.Context, id string, opts *GroupOptions) (Result, error) {
	if err := s.client.require(2); err != nil {
		return Result{}, err
	}
	if err := validation.Validate(id, validation.Required); err != nil {
		return Result{}, invalidArgument(err)
	}
	if opts == nil || len(opts.Users)+len(opts.Owners)+len(opts.Subgroups) == 0 {
		return Result{}, invalidArgument(errNoGroupMembers)
	}

	data := opts.body()
	data["Group"] = id
	return s.client.do(ctx, &api.Call{Method: "POST", Path: "groups", JSON: data})
}

// Edit changes the settings of group id. Only super users and group owners
// may do this.
func (s *Groups) Edit(ctx context.Context, id string, opts *GroupOptions) (Result, error) {
	if err := s.client.require(2); err != nil {
		return Result{}, err
	}
	return s.client.do(ctx, &api.Call{
		Method: "PATCH",
		Path:   "groups/" + url.PathEscape(id),
		JSON:   opts.body(),
	})
}

// Delete deletes group id. Only super users and group owners may do this.
func (s *Groups) Delete(ctx context.Context, id string) (Result, error) {
	if err := s.client.require(2); err != nil {
		return Result{}, err
	}
	return s.client.do(ctx, &api.Call{Method: "DELETE", Path: "groups/" + url.PathEscape(id)})
}
