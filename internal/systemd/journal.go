package systemd

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

type commander interface {
	Output() ([]byte, error)
}

type realCommander struct {
	cmd *exec.Cmd
}

func (r realCommander) Output() ([]byte, error) {
	return r.cmd.Output()
}

var runExecCommand = func(ctx context.Context, name string, args ...string) commander {
	return realCommander{cmd: exec.CommandContext(ctx, name, args...)}
}

var streamCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}

func journalArgs(unit UnitID, lines int) []string {
	args := []string{"--quiet", "--no-pager", "--output=short-iso", "-n", strconv.Itoa(lines)}
	if unit.Scope == ScopeUser {
		return append(args, "--user-unit", unit.Name)
	}
	return append(args, "--unit", unit.Name)
}

// Logs returns the most recent journal lines for unit, oldest first.
func (c *Client) Logs(ctx context.Context, unit UnitID) ([]string, error) {
	out, err := runExecCommand(ctx, c.journalctl, journalArgs(unit, c.logLines)...).Output()
	if err != nil {
		return nil, fmt.Errorf("journalctl %s: %w", unit.Name, err)
	}
	return splitLines(string(out)), nil
}

// FollowLogs streams new journal lines for unit until ctx is cancelled.
func (c *Client) FollowLogs(ctx context.Context, unit UnitID, fn func(line string)) error {
	args := append(journalArgs(unit, 0), "--follow")
	cmd := streamCommand(ctx, c.journalctl, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("journalctl follow %s: %w", unit.Name, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("journalctl follow %s: %w", unit.Name, err)
	}
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		fn(scanner.Text())
	}
	err = cmd.Wait()
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("journalctl follow %s: %w", unit.Name, err)
	}
	return nil
}

func splitLines(out string) []string {
	out = strings.TrimRight(out, "\n")
	if strings.TrimSpace(out) == "" {
		return nil
	}
	return strings.Split(out, "\n")
}
