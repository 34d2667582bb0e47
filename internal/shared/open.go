package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

// opener builds the command that hands target to the desktop's default handler on goos.
func opener(goos, target string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", target), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", target), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target), nil
	default:
		return nil, fmt.Errorf("%w: cannot open files on %s", ErrNotImplemented, goos)
	}
}

// OpenExternal opens a URL or local file (a downloaded poster) with the system's default application.
//
// It returns once the handler has been started.
func OpenExternal(target string) error {
	cmd, err := opener(runtime.GOOS, target)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	return cmd.Process.Release()
}
