package swarm

import (
	"context"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/pbelskiy/helix-swarm/internal/api"
)

// Comments groups the comment endpoints. All of them require API v3.
type Comments service

// CommentListOptions filters Comments.List.
type CommentListOptions struct {
	// Topic such as "reviews/1234", "changes/1234" or "jobs/job001234".
	Topic  string
	After  int
	Limit  int
	Fields []string
	// IgnoreArchived excludes archived comments.
	IgnoreArchived bool
	// TasksOnly returns only comments flagged as tasks.
	TasksOnly bool
	// TaskStates limits tasks to the given states, e.g. "open", "addressed".
	TaskStates []string
}

func (o *CommentListOptions) params() api.Params {
	p := api.Params{}
	if o == nil {
		return p
	}
	p.Set("topic", o.Topic)
	p.SetInt("after", o.After)
	p.SetInt("max", o.Limit)
	p.SetJoined("fields", o.Fields)
	p.SetBool("ignoreArchived", o.IgnoreArchived)
	p.SetBool("tasksOnly", o.TasksOnly)
	p.AddList("taskStates", o.TaskStates)
	return p
}

// CommentAddOptions holds the optional fields of Comments.Add.
type CommentAddOptions struct {
	// SilenceNotification suppresses notifications for this comment.
	SilenceNotification bool
	// DelayNotification delays notifications.
	DelayNotification bool
	// TaskState is "comment" for a plain comment or "open" to open a task.
	TaskState string
	// Flags, typically "closed" to archive the comment.
	Flags []string
	// ContextFile is the depot path to comment on, e.g. //depot/main/README.txt.
	// Valid for change and review topics only.
	ContextFile string
	// ContextLeftLine and ContextRightLine attach an inline comment to a
	// diff line. Either needs ContextFile.
	ContextLeftLine  int
	ContextRightLine int
	// ContextContent is the commented line and up to four preceding lines.
	ContextContent []string
	// ContextVersion selects the review version to attach to.
	ContextVersion int
}

// Validate checks field combinations.
func (o CommentAddOptions) Validate() error {
	lineSet := o.ContextLeftLine != 0 || o.ContextRightLine != 0
	return validation.ValidateStruct(&o,
		validation.Field(&o.TaskState, validation.In("comment", "open")),
		validation.Field(&o.ContextFile, validation.When(lineSet, validation.Required)),
	)
}

func (o *CommentAddOptions) params(p api.Params) {
	if o == nil {
		return
	}
	p.SetBool("silenceNotification", o.SilenceNotification)
	p.SetBool("delayNotification", o.DelayNotification)
	p.Set("taskState", o.TaskState)
	p.AddList("flags", o.Flags)
	p.Set("context[file]", o.ContextFile)
	p.SetInt("context[leftLine]", o.ContextLeftLine)
	p.SetInt("context[rightLine]", o.ContextRightLine)
	p.Add("context[content]", o.ContextContent...)
	p.SetInt("context[version]", o.ContextVersion)
}

// CommentEditOptions holds the optional fields of Comments.Edit.
type CommentEditOptions struct {
	Topic string
	// TaskState such as "comment", "open", "addressed" or "verified". Some
	// transitions need an intermediate state.
	TaskState           string
	Flags               []string
	SilenceNotification bool
	DelayNotification   bool
}

// List returns comments, optionally filtered by opts.
func (s *Comments) List(ctx context.Context, opts *CommentListOptions) (Result, error) {
	if err := s.client.require(3); err != nil {
		return Result{}, err
	}
	return s.client.do(ctx, &api.Call{
		Method: "GET",
		Path:   "comments",
		Query:  opts.params().Values(),
	})
}

// Add adds a comment with body to topic, for example "reviews/1234".
// Markdown is supported in body.
func (s *Comments) Add(ctx context.Context, topic, body string, opts *CommentAddOptions) (Result, error) {
	if err := s.client.require(3); err != nil {
		return Result{}, err
	}
	if err := validation.Validate(topic, validation.Required); err != nil {
		return Result{}, invalidArgument(err)
	}
	if opts != nil {
		if err := opts.Validate(); err != nil {
			return Result{}, invalidArgument(err)
		}
	}

	form := api.Params{}
	form.Set("topic", topic)
	form.Add("body", body)
	opts.params(form)

	return s.client.do(ctx, &api.Call{
		Method: "POST",
		Path:   "comments",
		Form:   form.Values(),
	})
}

// Edit replaces the body of comment id.
func (s *Comments) Edit(ctx context.Context, id int, body string, opts *CommentEditOptions) (Result, error) {
	if err := s.client.require(3); err != nil {
		return Result{}, err
	}

	form := api.Params{}
	form.Add("body", body)
	if opts != nil {
		form.Set("topic", opts.Topic)
		form.Set("taskState", opts.TaskState)
		form.AddList("flags", opts.Flags)
		form.SetBool("silenceNotification", opts.SilenceNotification)
		form.SetBool("delayNotification", opts.DelayNotification)
	}

	return s.client.do(ctx, &api.Call{
		Method: "PATCH",
		Path:   "comments/" + strconv.Itoa(id),
		Form:   form.Values(),
	})
}
