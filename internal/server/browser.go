package server

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/conneroisu/ciclowiki/internal/logging"
	"github.com/conneroisu/ciclowiki/internal/validation"
)

// openBrowser opens url in the user's default browser once the listener has
// had a moment to start accepting.
func openBrowser(ctx context.Context, url string, logger logging.Logger) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(100 * time.Millisecond):
	}

	// The URL reaches a platform command; reject anything that could be
	// read as more than one argument.
	if err := validation.ValidateURL(url); err != nil {
		logger.Warn(ctx, err, "Refusing to open browser")
		return
	}

	cmd, err := browserCommand(runtime.GOOS, url)
	if err != nil {
		logger.Warn(ctx, err, "Cannot open browser")
		return
	}
	if err := cmd.Start(); err != nil {
		logger.Warn(ctx, err, "Failed to open browser")
		return
	}
	go cmd.Wait()
}

func browserCommand(goos, url string) (*exec.Cmd, error) {
	switch goos {
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	case "darwin":
		return exec.Command("open", url), nil
	default:
		return nil, fmt.Errorf("unsupported platform %q", goos)
	}
}
