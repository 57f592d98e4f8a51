package cli

import (
	"context"
	"os/exec"
	"runtime"
)

// openBrowser opens the URL with the platform launcher. Failure is not fatal;
// the consent URL is always printed for manual use.
func openBrowser(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(context.Background(), "open", target)
	case "windows":
		cmd = exec.CommandContext(context.Background(), "cmd", "/c", "start", target)
	default:
		cmd = exec.CommandContext(context.Background(), "xdg-open", target)
	}
	return cmd.Start()
}
