package collector

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode"
)

// helperWaitDelay bounds how long a killed helper may keep its stdout open.
const helperWaitDelay = 200 * time.Millisecond

// RunHelper runs command through /bin/sh and returns the first line of its
// standard output with trailing whitespace removed. A failed run or an empty
// line is an error; ctx bounds the run.
func RunHelper(ctx context.Context, command string) (string, error) {
	if strings.TrimSpace(command) == "" {
		return "", fmt.Errorf("no helper configured: %w", ErrUnavailable)
	}

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	cmd.WaitDelay = helperWaitDelay
	out, err := cmd.Output()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("run %q: %w", command, ctxErr)
	}
	if err != nil {
		return "", fmt.Errorf("run %q: %w", command, err)
	}

	line, _, _ := strings.Cut(string(out), "\n")
	line = strings.TrimRightFunc(line, unicode.IsSpace)
	if line == "" {
		return "", fmt.Errorf("run %q: empty output: %w", command, ErrUnavailable)
	}
	return line, nil
}
