package biometric

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/dmitrijs2005/walletlock/internal/common"
)

// runFunc runs a command and returns its combined output. A non-zero exit
// is reported through err as *exec.ExitError.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// FprintdProbe uses the fprintd command line tools found on Linux desktops.
// fprintd has no prompt UI of its own, so the prompt message is written to
// Out before the scan starts.
type FprintdProbe struct {
	User    string
	Out     io.Writer
	Timeout time.Duration
	// Confirm is asked after a match when the prompt requires confirmation.
	// A nil Confirm accepts the match.
	Confirm func(ctx context.Context, p Prompt) bool

	run runFunc
}

func NewFprintdProbe(user string, out io.Writer) *FprintdProbe {
	return &FprintdProbe{User: user, Out: out, Timeout: 30 * time.Second, run: execRun}
}

func (p *FprintdProbe) IsAvailable(ctx context.Context) (bool, error) {
	out, err := p.run(ctx, "fprintd-list", p.User)
	if errors.Is(err, exec.ErrNotFound) {
		return false, nil
	}
	text := string(out)

	switch {
	case strings.Contains(text, "No devices available"):
		return false, nil
	case strings.Contains(text, "no fingers enrolled"):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("fprintd-list: %w", err)
	}
	return strings.Contains(text, " - #"), nil
}

func (p *FprintdProbe) Challenge(ctx context.Context, prompt Prompt) (Result, error) {
	if p.Out != nil && prompt.Message != "" {
		fmt.Fprintf(p.Out, "%s (touch the sensor, Ctrl-C to %s)\n", prompt.Message, strings.ToLower(prompt.CancelLabel))
	}

	runCtx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	out, err := p.run(runCtx, "fprintd-verify", p.User)
	if ctx.Err() != nil {
		return UserCancelled, nil
	}
	if runCtx.Err() != nil {
		return Failed, nil
	}

	result := parseVerify(string(out))
	if result == Failed && err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return HardwareError, fmt.Errorf("fprintd-verify: %w: %w", common.ErrPlatformUnavailable, err)
		}
	}

	if result == Success && prompt.RequireConfirmation && p.Confirm != nil && !p.Confirm(ctx, prompt) {
		return UserCancelled, nil
	}
	return result, nil
}

func parseVerify(out string) Result {
	switch {
	case strings.Contains(out, "verify-match"):
		return Success
	case strings.Contains(out, "verify-no-match"):
		return Failed
	case strings.Contains(out, "No devices available"),
		strings.Contains(out, "verify-disconnected"),
		strings.Contains(out, "verify-unknown-error"):
		return HardwareError
	case strings.Contains(out, "no fingers enrolled"):
		return NotEnrolled
	default:
		return Failed
	}
}
