// Command swarm is a command line front end for the Helix Swarm REST API.
//
// Connection settings come from swarm.yaml (or the file named by
// SWARM_CONFIG), a .env file and SWARM_* environment variables.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	swarm "github.com/pbelskiy/helix-swarm"
	"github.com/pbelskiy/helix-swarm/internal/config"
	"github.com/pbelskiy/helix-swarm/internal/json"
)

const (
	cliName = "swarm"
	version = "0.1.0"
)

// Env holds the I/O streams and factories used by the commands.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// LoadConfig returns the connection settings.
	LoadConfig func() (*config.Config, error)
	// NewClient builds a client from the settings.
	NewClient func(cfg *config.Config, logger hclog.Logger) (*swarm.Client, error)
}

// DefaultEnv returns an Env using the process streams and the real loaders.
func DefaultEnv() *Env {
	return &Env{
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		LoadConfig: loadConfig,
		NewClient:  newClient,
	}
}

func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	path := os.Getenv("SWARM_CONFIG")
	if path == "" {
		path = "swarm.yaml"
	}
	return config.Load(path)
}

func newClient(cfg *config.Config, logger hclog.Logger) (*swarm.Client, error) {
	return swarm.New(cfg.URL, cfg.User, cfg.Password, cfg.ClientOptions(logger)...)
}

func run(args []string, env *Env) int {
	ui := &cli.BasicUi{
		Reader:      env.Stdin,
		Writer:      env.Stdout,
		ErrorWriter: env.Stderr,
	}

	c := &cli.CLI{
		Name:       cliName,
		Args:       args[1:],
		Version:    version,
		Commands:   commands(&baseCommand{ui: ui, env: env}),
		HelpWriter: env.Stderr,
	}

	exitCode, err := c.Run()
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	return exitCode
}

type baseCommand struct {
	ui  cli.Ui
	env *Env
}

// command is a leaf command that calls one client operation and prints
// its result as JSON.
type command struct {
	*baseCommand

	synopsis string
	usage    string
	// args is the number of required positional arguments.
	args  int
	flags func(f *flag.FlagSet)
	call  func(ctx context.Context, c *swarm.Client, args []string) (any, error)
}

func (c *command) flagSet() *flag.FlagSet {
	f := flag.NewFlagSet(cliName, flag.ContinueOnError)
	f.SetOutput(io.Discard)
	if c.flags != nil {
		c.flags(f)
	}
	return f
}

func (c *command) Synopsis() string {
	return c.synopsis
}

func (c *command) Help() string {
	var buf bytes.Buffer
	f := c.flagSet()
	f.SetOutput(&buf)
	f.PrintDefaults()

	help := "Usage: " + c.usage + "\n\n  " + c.synopsis + "."
	if buf.Len() > 0 {
		help += "\n\nOptions:\n\n" + buf.String()
	}
	return help
}

func (c *command) Run(args []string) int {
	f := c.flagSet()
	if err := f.Parse(args); err != nil {
		c.ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return cli.RunResultHelp
	}
	if f.NArg() < c.args {
		c.ui.Error(fmt.Sprintf("expected %d argument(s), got %d", c.args, f.NArg()))
		return cli.RunResultHelp
	}

	cfg, err := c.env.LoadConfig()
	if err != nil {
		c.ui.Error(err.Error())
		return 1
	}
	logger := cfg.Logger(cliName)

	client, err := c.env.NewClient(cfg, logger)
	if err != nil {
		c.ui.Error(fmt.Sprintf("create client: %v", err))
		return 1
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, err := c.call(ctx, client, f.Args())
	if err != nil {
		var incompatible *swarm.CompatibilityError
		if errors.As(err, &incompatible) {
			logger.Debug("operation not available", "have", incompatible.Have, "need", incompatible.Need)
		}
		c.ui.Error(err.Error())
		return 1
	}

	text, err := render(out)
	if err != nil {
		c.ui.Error(fmt.Sprintf("encode output: %v", err))
		return 1
	}
	c.ui.Output(text)
	return 0
}

// render formats a Result body or any other value as indented JSON.
func render(v any) (string, error) {
	if res, ok := v.(swarm.Result); ok {
		v = res.Value()
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// groupCommand only prints the help of its subcommands.
type groupCommand struct {
	synopsis string
	help     string
}

func (c *groupCommand) Synopsis() string { return c.synopsis }
func (c *groupCommand) Help() string     { return c.help }
func (c *groupCommand) Run([]string) int { return cli.RunResultHelp }

func intArg(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", name, s)
	}
	return n, nil
}

// splitList splits a comma separated flag value; empty yields nil.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
