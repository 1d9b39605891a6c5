package swarm

import (
	"context"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/pbelskiy/helix-swarm/internal/api"
)

// Changes groups the changelist endpoints.
type Changes service

// Check categories accepted by Changes.CheckStatus.
const (
	CheckEnforced = "enforced"
	CheckStrict   = "strict"
	CheckShelve   = "shelve"
)

// AffectsProjects returns the projects and branches affected by change.
// Requires API v8.
func (s *Changes) AffectsProjects(ctx context.Context, change int) (Result, error) {
	if err := s.client.require(8); err != nil {
		return Result{}, err
	}
	return s.client.do(ctx, &api.Call{
		Method: "GET",
		Path:   "changes/" + strconv.Itoa(change) + "/affectsprojects",
	})
}

// DefaultReviewers returns the default reviewers for change. Requires API v8.
func (s *Changes) DefaultReviewers(ctx context.Context, change int) (Result, error) {
	if err := s.client.require(8); err != nil {
		return Result{}, err
	}
	return s.client.do(ctx, &api.Call{
		Method: "GET",
		Path:   "changes/" + strconv.Itoa(change) + "/defaultreviewers",
	})
}

// CheckStatus runs the workflow checks of category (CheckEnforced,
// CheckStrict or CheckShelve) against change. Requires API v9.
func (s *Changes) CheckStatus(ctx context.Context, change int, category string) (Result, error) {
	if err := s.client.require(9); err != nil {
		return Result{}, err
	}
	err := validation.Validate(category,
		validation.Required,
		validation.In(CheckEnforced, CheckStrict, CheckShelve),
	)
	if err != nil {
		return Result{}, invalidArgument(err)
	}

	q := api.Params{}
	q.Set("type", category)
	return s.client.do(ctx, &api.Call{
		Method: "GET",
		Path:   "changes/" + strconv.Itoa(change) + "/check",
		Query:  q.Values(),
	})
}
