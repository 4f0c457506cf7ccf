package surface

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Opener opens a viewer URL, typically in a browser.
type Opener func(ctx context.Context, url string) error

// ErrNoOpener is returned on platforms without a known browser launcher.
var ErrNoOpener = errors.New("no browser launcher for this platform")

// SystemOpener returns an opener running command with the URL appended.
// An empty command uses the platform launcher.
func SystemOpener(command string) Opener {
	return func(_ context.Context, url string) error {
		name, args, err := launcher(command, runtime.GOOS)
		if err != nil {
			return err
		}
		cmd := exec.Command(name, append(args, url)...) //nolint:gosec // Command comes from user config.
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("starting %s: %w", name, err)
		}
		go func() { _ = cmd.Wait() }()
		return nil
	}
}

func launcher(command, goos string) (string, []string, error) {
	if fields := strings.Fields(command); len(fields) > 0 {
		return fields[0], fields[1:], nil
	}
	switch goos {
	case "darwin":
		return "open", nil, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", nil, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}, nil
	default:
		return "", nil, ErrNoOpener
	}
}
