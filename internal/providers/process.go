package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// processClient runs a local agent command with the prompt as its final
// argument. Exit status zero yields stdout; anything else yields stderr, or
// the exit error when stderr is empty.
type processClient struct {
	name    string
	command string
	args    []string
	setting string
}

func newProcessClient(opts ClientOptions) Client {
	return &processClient{
		name:    clientName(opts, "local"),
		command: strings.TrimSpace(opts.Command),
		args:    append([]string(nil), opts.Args...),
		setting: settingOr(opts, "LOCAL_AGENT_CMD"),
	}
}

func (c *processClient) Name() string { return c.name }

func (c *processClient) Ask(ctx context.Context, prompt string) (string, error) {
	if c.command == "" {
		return "", notSet(c.setting)
	}

	args := append(append([]string(nil), c.args...), prompt)
	cmd := exec.CommandContext(ctx, c.command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return "", fmt.Errorf("run %s: %w", c.command, err)
	}
	if ctx.Err() != nil {
		return "", fmt.Errorf("run %s: %w", c.command, ctx.Err())
	}
	if msg := stderr.String(); strings.TrimSpace(msg) != "" {
		return msg, nil
	}
	return "", fmt.Errorf("%s exited with status %d", c.command, exitErr.ExitCode())
}
