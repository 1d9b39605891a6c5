package swarm

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComments_List(t *testing.T) {
	fake := newFakeSwarm(t)
	fake.ok("GET", "comments", `{"comments": {"51": {"body": "test"}}, "lastSeen": 51}`)

	res, err := fake.client(t, "3").Comments().List(context.Background(), &CommentListOptions{
		Topic:          "reviews/911",
		Limit:          10,
		IgnoreArchived: true,
		TasksOnly:      true,
		TaskStates:     []string{"open", "addressed"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(51), res.Get("lastSeen").Int())

	q := fake.last(t).Query
	assert.Equal(t, "reviews/911", q.Get("topic"))
	assert.Equal(t, "10", q.Get("max"))
	assert.Equal(t, "true", q.Get("ignoreArchived"))
	assert.Equal(t, "true", q.Get("tasksOnly"))
	assert.Equal(t, []string{"open", "addressed"}, q["taskStates[]"])
}

func TestComments_RequireV3(t *testing.T) {
	fake := newFakeSwarm(t)
	c := fake.client(t, "2")
	ctx := context.Background()

	_, err := c.Comments().List(ctx, nil)
	assert.ErrorIs(t, err, ErrIncompatible)
	_, err = c.Comments().Add(ctx, "reviews/911", "hello", nil)
	assert.ErrorIs(t, err, ErrIncompatible)
	_, err = c.Comments().Edit(ctx, 1, "hello", nil)
	assert.ErrorIs(t, err, ErrIncompatible)
	assert.Zero(t, fake.count())
}

func TestComments_Add(t *testing.T) {
	fake := newFakeSwarm(t)
	fake.ok("POST", "comments", `{"comment": {"id": 42, "topic": "reviews/911"}}`)

	res, err := fake.client(t, "9").Comments().Add(context.Background(), "reviews/911", "Looks good", &CommentAddOptions{
		SilenceNotification: true,
		TaskState:           "open",
		Flags:               []string{"closed"},
		ContextFile:         "//depot/main/README.txt",
		ContextRightLine:    5,
		ContextContent:      []string{"line 4", "line 5"},
		ContextVersion:      2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.Get("comment.id").Int())

	form := fake.last(t).Form
	assert.Equal(t, "reviews/911", form.Get("topic"))
	assert.Equal(t, "Looks good", form.Get("body"))
	assert.Equal(t, "true", form.Get("silenceNotification"))
	assert.Equal(t, "open", form.Get("taskState"))
	assert.Equal(t, []string{"closed"}, form["flags[]"])
	assert.Equal(t, "//depot/main/README.txt", form.Get("context[file]"))
	assert.Equal(t, "5", form.Get("context[rightLine]"))
	assert.Empty(t, form.Get("context[leftLine]"))
	assert.Equal(t, []string{"line 4", "line 5"}, form["context[content]"])
	assert.Equal(t, "2", form.Get("context[version]"))
	assert.NotContains(t, form, "delayNotification")
}

func TestComments_AddValidation(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		opts  *CommentAddOptions
	}{
		{"missing topic", "", nil},
		{"bad task state", "reviews/911", &CommentAddOptions{TaskState: "verified"}},
		{"line without file", "reviews/911", &CommentAddOptions{ContextLeftLine: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeSwarm(t)

			_, err := fake.client(t, "9").Comments().Add(context.Background(), tt.topic, "body", tt.opts)
			var swarmErr *Error
			require.ErrorAs(t, err, &swarmErr)
			assert.Zero(t, fake.count())
		})
	}
}

func TestComments_Edit(t *testing.T) {
	fake := newFakeSwarm(t)
	fake.ok("PATCH", "comments/42", `{"comment": {"id": 42, "body": "Edited"}}`)

	res, err := fake.client(t, "9").Comments().Edit(context.Background(), 42, "Edited", &CommentEditOptions{
		TaskState: "addressed",
		Flags:     []string{"closed"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Edited", res.Get("comment.body").String())

	form := fake.last(t).Form
	assert.Equal(t, "Edited", form.Get("body"))
	assert.Equal(t, "addressed", form.Get("taskState"))
	assert.Equal(t, []string{"closed"}, form["flags[]"])
}

func TestComments_NotFoundWithoutErrorKeyIsSuccess(t *testing.T) {
	fake := newFakeSwarm(t)
	fake.handle("PATCH", "comments/42", fakeResponse{status: http.StatusNotFound, body: `{"comment": null}`})

	res, err := fake.client(t, "9").Comments().Edit(context.Background(), 42, "Edited", nil)
	require.NoError(t, err)
	assert.True(t, res.Get("comment").Exists())
}
