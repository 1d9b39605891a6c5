package main

import (
	"context"
	"flag"

	"github.com/mitchellh/cli"

	swarm "github.com/pbelskiy/helix-swarm"
)

func commands(b *baseCommand) map[string]cli.CommandFactory {
	leaf := func(c *command) cli.CommandFactory {
		c.baseCommand = b
		return func() (cli.Command, error) { return c, nil }
	}
	group := func(synopsis, help string) cli.CommandFactory {
		return func() (cli.Command, error) {
			return &groupCommand{synopsis: synopsis, help: help}, nil
		}
	}

	return map[string]cli.CommandFactory{
		"server-version": leaf(serverVersionCommand()),
		"check-auth":     leaf(checkAuthCommand()),
		"activity":       leaf(activityCommand()),
		"project":        leaf(projectCommand()),

		"review": group("Work with reviews",
			"Usage: swarm review <subcommand> [options] [args]\n\n  This command groups subcommands for reviews."),
		"review list":   leaf(reviewListCommand()),
		"review info":   leaf(reviewInfoCommand()),
		"review latest": leaf(reviewLatestCommand()),
		"review create": leaf(reviewCreateCommand()),
		"review vote":   leaf(reviewVoteCommand()),
		"review state":  leaf(reviewStateCommand()),

		"comment": group("Work with comments",
			"Usage: swarm comment <subcommand> [options] [args]\n\n  This command groups subcommands for comments."),
		"comment list": leaf(commentListCommand()),
		"comment add":  leaf(commentAddCommand()),
	}
}

func serverVersionCommand() *command {
	return &command{
		synopsis: "Show the Swarm server version",
		usage:    "swarm server-version",
		call: func(ctx context.Context, c *swarm.Client, _ []string) (any, error) {
			return c.Version(ctx)
		},
	}
}

func checkAuthCommand() *command {
	var token string
	return &command{
		synopsis: "Check the configured credentials",
		usage:    "swarm check-auth [-token=<otp>]",
		flags: func(f *flag.FlagSet) {
			f.StringVar(&token, "token", "", "Second factor token to validate")
		},
		call: func(ctx context.Context, c *swarm.Client, _ []string) (any, error) {
			return c.CheckAuth(ctx, token)
		},
	}
}

func activityCommand() *command {
	var opts swarm.ActivityListOptions
	var fields string
	return &command{
		synopsis: "List the activity stream",
		usage:    "swarm activity [options]",
		flags: func(f *flag.FlagSet) {
			f.StringVar(&opts.Stream, "stream", "", "Stream, e.g. review-1234 or user-alice")
			f.StringVar(&opts.Category, "type", "", "Activity type: change, comment, job or review")
			f.IntVar(&opts.Change, "change", 0, "Changelist the activity is linked to")
			f.IntVar(&opts.Limit, "max", 0, "Maximum number of entries")
			f.StringVar(&fields, "fields", "", "Comma separated fields to return")
		},
		call: func(ctx context.Context, c *swarm.Client, _ []string) (any, error) {
			opts.Fields = splitList(fields)
			return c.Activities().List(ctx, &opts)
		},
	}
}

func projectCommand() *command {
	var fields, workflow string
	return &command{
		synopsis: "List projects, or show one project",
		usage:    "swarm project [options] [id]",
		flags: func(f *flag.FlagSet) {
			f.StringVar(&fields, "fields", "", "Comma separated fields to return")
			f.StringVar(&workflow, "workflow", "", "Only projects using this workflow")
		},
		call: func(ctx context.Context, c *swarm.Client, args []string) (any, error) {
			if len(args) > 0 {
				return c.Projects().Info(ctx, args[0], splitList(fields))
			}
			return c.Projects().List(ctx, splitList(fields), workflow)
		},
	}
}

func reviewListCommand() *command {
	var opts swarm.ReviewListOptions
	var authors, projects, states, fields string
	return &command{
		synopsis: "List reviews",
		usage:    "swarm review list [options]",
		flags: func(f *flag.FlagSet) {
			f.StringVar(&authors, "author", "", "Comma separated review authors")
			f.StringVar(&projects, "project", "", "Comma separated projects")
			f.StringVar(&states, "state", "", "Comma separated states, e.g. needsReview,approved")
			f.StringVar(&opts.Keywords, "keywords", "", "Keywords to search for")
			f.IntVar(&opts.Limit, "max", 0, "Maximum number of reviews")
			f.StringVar(&fields, "fields", "", "Comma separated fields to return")
		},
		call: func(ctx context.Context, c *swarm.Client, _ []string) (any, error) {
			opts.Authors = splitList(authors)
			opts.Projects = splitList(projects)
			opts.States = splitList(states)
			opts.Fields = splitList(fields)
			return c.Reviews().List(ctx, &opts)
		},
	}
}

func reviewInfoCommand() *command {
	var fields string
	return &command{
		synopsis: "Show a review",
		usage:    "swarm review info [-fields=a,b] <id>",
		args:     1,
		flags: func(f *flag.FlagSet) {
			f.StringVar(&fields, "fields", "", "Comma separated fields to return")
		},
		call: func(ctx context.Context, c *swarm.Client, args []string) (any, error) {
			id, err := intArg("review id", args[0])
			if err != nil {
				return nil, err
			}
			return c.Reviews().Info(ctx, id, splitList(fields))
		},
	}
}

type latestOutput struct {
	Revision int `json:"revision"`
	Change   int `json:"change"`
}

func reviewLatestCommand() *command {
	return &command{
		synopsis: "Show the latest revision of a review and its change",
		usage:    "swarm review latest <id>",
		args:     1,
		call: func(ctx context.Context, c *swarm.Client, args []string) (any, error) {
			id, err := intArg("review id", args[0])
			if err != nil {
				return nil, err
			}
			revision, change, err := c.Reviews().LatestRevisionAndChange(ctx, id)
			if err != nil {
				return nil, err
			}
			return latestOutput{Revision: revision, Change: change}, nil
		},
	}
}

func reviewCreateCommand() *command {
	var opts swarm.ReviewCreateOptions
	var reviewers string
	return &command{
		synopsis: "Request a review of a change",
		usage:    "swarm review create [options] <change>",
		args:     1,
		flags: func(f *flag.FlagSet) {
			f.StringVar(&opts.Description, "description", "", "Review description")
			f.StringVar(&reviewers, "reviewers", "", "Comma separated reviewers")
		},
		call: func(ctx context.Context, c *swarm.Client, args []string) (any, error) {
			change, err := intArg("change", args[0])
			if err != nil {
				return nil, err
			}
			opts.Reviewers = splitList(reviewers)
			return c.Reviews().Create(ctx, change, &opts)
		},
	}
}

func reviewVoteCommand() *command {
	var version int
	return &command{
		synopsis: "Vote on a review",
		usage:    "swarm review vote [-version=N] <id> <up|down|clear>",
		args:     2,
		flags: func(f *flag.FlagSet) {
			f.IntVar(&version, "version", 0, "Review version to vote on")
		},
		call: func(ctx context.Context, c *swarm.Client, args []string) (any, error) {
			id, err := intArg("review id", args[0])
			if err != nil {
				return nil, err
			}
			return c.Reviews().Vote(ctx, id, args[1], version)
		},
	}
}

func reviewStateCommand() *command {
	var opts swarm.ReviewStateOptions
	return &command{
		synopsis: "Change the state of a review",
		usage:    "swarm review state [options] <id> <state>",
		args:     2,
		flags: func(f *flag.FlagSet) {
			f.StringVar(&opts.Description, "description", "", "Description for the state change")
			f.BoolVar(&opts.Commit, "commit", false, "Commit the review when approving")
		},
		call: func(ctx context.Context, c *swarm.Client, args []string) (any, error) {
			id, err := intArg("review id", args[0])
			if err != nil {
				return nil, err
			}
			return c.Reviews().UpdateState(ctx, id, args[1], &opts)
		},
	}
}

func commentListCommand() *command {
	var opts swarm.CommentListOptions
	return &command{
		synopsis: "List comments",
		usage:    "swarm comment list [options]",
		flags: func(f *flag.FlagSet) {
			f.StringVar(&opts.Topic, "topic", "", "Topic, e.g. reviews/1234")
			f.IntVar(&opts.Limit, "max", 0, "Maximum number of comments")
			f.BoolVar(&opts.TasksOnly, "tasks", false, "Only comments flagged as tasks")
		},
		call: func(ctx context.Context, c *swarm.Client, _ []string) (any, error) {
			return c.Comments().List(ctx, &opts)
		},
	}
}

func commentAddCommand() *command {
	var opts swarm.CommentAddOptions
	return &command{
		synopsis: "Comment on a topic",
		usage:    "swarm comment add [options] <topic> <body>",
		args:     2,
		flags: func(f *flag.FlagSet) {
			f.StringVar(&opts.TaskState, "task-state", "", "comment or open")
			f.BoolVar(&opts.SilenceNotification, "silent", false, "Do not send notifications")
		},
		call: func(ctx context.Context, c *swarm.Client, args []string) (any, error) {
			return c.Comments().Add(ctx, args[0], args[1], &opts)
		},
	}
}
