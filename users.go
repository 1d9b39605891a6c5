package swarm

import (
	"context"
	"errors"
	"net/url"

	"github.com/pbelskiy/helix-swarm/internal/api"
)

// Users groups the user endpoints. All of them require API v9.
type Users service

// UserListOptions filters Users.List.
type UserListOptions struct {
	// Fields are case sensitive, e.g. User, Email, FullName.
	Fields []string
	Users  []string
	// Group lists the members of a group. Cannot be combined with Users.
	Group string
}

// List returns users.
func (s *Users) List(ctx context.Context, opts *UserListOptions) (Result, error) {
	if err := s.client.require(9); err != nil {
		return Result{}, err
	}
	q := api.Params{}
	if opts != nil {
		if len(opts.Users) > 0 && opts.Group != "" {
			return Result{}, invalidArgument(errors.New("users and group are mutually exclusive"))
		}
		q.SetJoined("fields", opts.Fields)
		q.SetJoined("users", opts.Users)
		q.Set("group", opts.Group)
	}
	return s.client.do(ctx, &api.Call{Method: "GET", Path: "users", Query: q.Values()})
}

// UnfollowAll makes user unfollow all users and projects. Admins may do this
// for anyone, other users only for themselves.
func (s *Users) UnfollowAll(ctx context.Context, user string) (Result, error) {
	if err := s.client.require(9); err != nil {
		return Result{}, err
	}
	return s.client.do(ctx, &api.Call{
		Method: "GET",
		Path:   "users/" + url.PathEscape(user) + "/unfollowall",
	})
}
