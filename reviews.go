package swarm

import (
	"context"
	"errors"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/pbelskiy/helix-swarm/internal/api"
)

// Reviews groups the review endpoints.
type Reviews service

// Review states accepted by Reviews.UpdateState.
const (
	StateNeedsReview   = "needsReview"
	StateNeedsRevision = "needsRevision"
	StateApproved      = "approved"
	StateRejected      = "rejected"
	StateArchived      = "archived"
)

// Votes accepted by Reviews.Vote.
const (
	VoteUp    = "up"
	VoteDown  = "down"
	VoteClear = "clear"
)

// Modes accepted by Reviews.AddChange.
const (
	ModeReplace = "replace"
	ModeAppend  = "append"
)

// ReviewListOptions filters Reviews.List. Zero fields are omitted.
type ReviewListOptions struct {
	After  int
	Limit  int
	Fields []string
	// Authors requires API v2.
	Authors      []string
	Changes      []int
	IDs          []int
	Keywords     string
	Participants []string
	Projects     []string
	States       []string
	// HasReviewers keeps reviews with (true) or without (false) reviewers.
	HasReviewers *bool
	// PassesTests keeps reviews whose tests pass (true) or fail (false).
	PassesTests     *bool
	NotUpdatedSince string
	// HasVoted is "up", "down" or "none".
	HasVoted string
	// MyComments keeps reviews the current user commented on.
	MyComments bool
}

// Validate checks field values.
func (o ReviewListOptions) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.HasVoted, validation.In("up", "down", "none")),
		validation.Field(&o.Limit, validation.Min(0)),
	)
}

func (o *ReviewListOptions) params() api.Params {
	p := api.Params{}
	p.SetInt("after", o.After)
	p.SetInt("max", o.Limit)
	p.SetJoined("fields", o.Fields)
	p.AddList("author", o.Authors)
	p.AddInts("change", o.Changes)
	p.AddInts("ids", o.IDs)
	p.Set("keywords", o.Keywords)
	p.AddList("participants", o.Participants)
	p.AddList("project", o.Projects)
	p.AddList("state", o.States)
	p.SetFlag("hasReviewers", o.HasReviewers)
	if o.PassesTests != nil {
		p.Set("passesTests", strconv.FormatBool(*o.PassesTests))
	}
	p.Set("notUpdatedSince", o.NotUpdatedSince)
	p.Set("hasVoted", o.HasVoted)
	p.SetBool("myComments", o.MyComments)
	return p
}

// ReviewCreateOptions holds the optional fields of Reviews.Create.
type ReviewCreateOptions struct {
	Description string
	Reviewers   []string
	// RequiredReviewers requires API v4.
	RequiredReviewers []string
	// ReviewerGroups requires API v7.
	ReviewerGroups []string
}

// ReviewStateOptions holds the optional fields of Reviews.UpdateState.
type ReviewStateOptions struct {
	Description string
	// Commit commits the change when approving.
	Commit bool
	// Wait blocks the server response until the commit finishes.
	Wait      bool
	Jobs      []string
	FixStatus string
}

func reviewPath(id int, parts ...string) string {
	path := "reviews/" + strconv.Itoa(id)
	for _, part := range parts {
		path += "/" + part
	}
	return path
}

// List returns reviews matching opts, which may be nil.
func (s *Reviews) List(ctx context.Context, opts *ReviewListOptions) (Result, error) {
	if opts == nil {
		opts = &ReviewListOptions{}
	}
	if len(opts.Authors) > 0 {
		if err := s.client.require(2); err != nil {
			return Result{}, err
		}
	}
	if err := opts.Validate(); err != nil {
		return Result{}, invalidArgument(err)
	}
	return s.client.do(ctx, &api.Call{
		Method: "GET",
		Path:   "reviews",
		Query:  opts.params().Values(),
	})
}

// Info returns review id, limited to fields when given.
func (s *Reviews) Info(ctx context.Context, id int, fields []string) (Result, error) {
	q := api.Params{}
	q.SetJoined("fields", fields)
	return s.client.do(ctx, &api.Call{Method: "GET", Path: reviewPath(id), Query: q.Values()})
}

// ForDashboard returns the reviews needing action by the current user.
// Requires API v6.
func (s *Reviews) ForDashboard(ctx context.Context) (Result, error) {
	if err := s.client.require(6); err != nil {
		return Result{}, err
	}
	return s.client.do(ctx, &api.Call{Method: "GET", Path: "dashboards/action"})
}

// Transitions returns the states review id may move to. upVoters, when set,
// is counted as an extra up vote. Requires API v9.
func (s *Reviews) Transitions(ctx context.Context, id int, upVoters string) (Result, error) {
	if err := s.client.require(9); err != nil {
		return Result{}, err
	}
	q := api.Params{}
	q.Set("upVoters", upVoters)
	return s.client.do(ctx, &api.Call{Method: "GET", Path: reviewPath(id, "transitions"), Query: q.Values()})
}

type revisionAndChange struct {
	revision int
	change   int
}

// LatestRevisionAndChange returns the number of versions of review id and the
// change of the newest one. For committed versions the archive change is
// returned.
func (s *Reviews) LatestRevisionAndChange(ctx context.Context, id int) (revision, change int, err error) {
	call := &api.Call{Method: "GET", Path: reviewPath(id)}
	rc, err := api.Do(ctx, s.client.core, call, func(r Result) (revisionAndChange, error) {
		versions := r.Get("review.versions").Array()
		if len(versions) == 0 {
			return revisionAndChange{}, &Error{Message: "review " + strconv.Itoa(id) + " has no versions"}
		}
		last := versions[len(versions)-1]
		if !last.Get("change").Exists() {
			return revisionAndChange{}, &Error{Message: "latest version of review " + strconv.Itoa(id) + " has no change"}
		}
		latest := last.Get("change").Int()
		if archived := last.Get("archiveChange"); archived.Exists() {
			latest = archived.Int()
		}
		return revisionAndChange{revision: len(versions), change: int(latest)}, nil
	})
	if err != nil {
		return 0, 0, err
	}
	return rc.revision, rc.change, nil
}

// Create requests a review of change.
func (s *Reviews) Create(ctx context.Context, change int, opts *ReviewCreateOptions) (Result, error) {
	form := api.Params{}
	form.SetInt("change", change)
	if opts != nil {
		if len(opts.RequiredReviewers) > 0 {
			if err := s.client.require(4); err != nil {
				return Result{}, err
			}
		}
		if len(opts.ReviewerGroups) > 0 {
			if err := s.client.require(7); err != nil {
				return Result{}, err
			}
		}
		form.Set("description", opts.Description)
		form.AddList("reviewers", opts.Reviewers)
		form.AddList("requiredReviewers", opts.RequiredReviewers)
		form.AddList("reviewerGroups", opts.ReviewerGroups)
	}
	return s.client.do(ctx, &api.Call{Method: "POST", Path: "reviews", Form: form.Values()})
}

// AddChange links change to review id. mode is ModeReplace or ModeAppend;
// empty leaves the server default.
func (s *Reviews) AddChange(ctx context.Context, id, change int, mode string) (Result, error) {
	if err := validation.Validate(mode, validation.In(ModeReplace, ModeAppend)); err != nil {
		return Result{}, invalidArgument(err)
	}
	form := api.Params{}
	form.SetInt("change", change)
	form.Set("mode", mode)
	return s.client.do(ctx, &api.Call{Method: "POST", Path: reviewPath(id, "changes"), Form: form.Values()})
}

// Update changes the author and/or description of review id. At least one
// must be given.
func (s *Reviews) Update(ctx context.Context, id int, author, description string) (Result, error) {
	if author == "" && description == "" {
		return Result{}, invalidArgument(errors.New("author or description is required"))
	}
	form := api.Params{}
	form.Set("author", author)
	form.Set("description", description)
	return s.client.do(ctx, &api.Call{Method: "PATCH", Path: reviewPath(id), Form: form.Values()})
}

// UpdateState moves review id to state. Requires API v2.
func (s *Reviews) UpdateState(ctx context.Context, id int, state string, opts *ReviewStateOptions) (Result, error) {
	if err := s.client.require(2); err != nil {
		return Result{}, err
	}
	err := validation.Validate(state,
		validation.Required,
		validation.In(StateNeedsReview, StateNeedsRevision, StateApproved, StateRejected, StateArchived),
	)
	if err != nil {
		return Result{}, invalidArgument(err)
	}

	form := api.Params{}
	form.Set("state", state)
	if opts != nil {
		form.Set("description", opts.Description)
		form.SetBool("commit", opts.Commit)
		form.SetBool("wait", opts.Wait)
		form.AddList("jobs", opts.Jobs)
		form.Set("fixStatus", opts.FixStatus)
	}
	return s.client.do(ctx, &api.Call{Method: "PATCH", Path: reviewPath(id, "state"), Form: form.Values()})
}

// Vote casts vote (VoteUp, VoteDown or VoteClear) on review id. version,
// when non-zero, selects the review version voted on.
func (s *Reviews) Vote(ctx context.Context, id int, vote string, version int) (Result, error) {
	err := validation.Validate(vote, validation.Required, validation.In(VoteUp, VoteDown, VoteClear))
	if err != nil {
		return Result{}, invalidArgument(err)
	}
	form := api.Params{}
	form.Set("vote[value]", vote)
	form.SetInt("vote[version]", version)
	return s.client.do(ctx, &api.Call{Method: "POST", Path: reviewPath(id, "vote"), Form: form.Values()})
}

// Archive archives every review not updated since notUpdatedSince
// (YYYY-MM-DD), using description as the archive comment. Requires API v6.
func (s *Reviews) Archive(ctx context.Context, notUpdatedSince, description string) (Result, error) {
	if err := s.client.require(6); err != nil {
		return Result{}, err
	}
	for _, v := range []string{notUpdatedSince, description} {
		if err := validation.Validate(v, validation.Required); err != nil {
			return Result{}, invalidArgument(err)
		}
	}
	form := api.Params{}
	form.Set("notUpdatedSince", notUpdatedSince)
	form.Set("description", description)
	return s.client.do(ctx, &api.Call{Method: "POST", Path: "reviews/archive", Form: form.Values()})
}

// Cleanup removes pending changelists of review id; reopen reopens their
// files in the user's workspace. Requires API v6.
func (s *Reviews) Cleanup(ctx context.Context, id int, reopen bool) (Result, error) {
	if err := s.client.require(6); err != nil {
		return Result{}, err
	}
	form := api.Params{}
	form.SetBool("reopen", reopen)
	return s.client.do(ctx, &api.Call{Method: "POST", Path: reviewPath(id, "cleanup"), Form: form.Values()})
}

// Obliterate permanently deletes review id. Requires API v9.
func (s *Reviews) Obliterate(ctx context.Context, id int) (Result, error) {
	if err := s.client.require(9); err != nil {
		return Result{}, err
	}
	return s.client.do(ctx, &api.Call{Method: "POST", Path: reviewPath(id, "obliterate")})
}
