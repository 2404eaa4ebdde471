// Package browser opens URLs in the operator's default web browser,
// abstracting over the per-platform commands.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"

	log "github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
)

// OpenURL opens the URL in the default browser. It tries the open-golang
// library first and falls back to platform-specific commands. The caller
// always prints the URL too, so a failure here only costs convenience.
func OpenURL(url string) error {
	if err := open.Run(url); err == nil {
		log.Debug("opened URL via open-golang")
		return nil
	}
	return openURLPlatformSpecific(url)
}

func openURLPlatformSpecific(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "linux":
		for _, browser := range []string{"xdg-open", "x-www-browser", "www-browser", "firefox", "chromium", "google-chrome"} {
			if _, err := exec.LookPath(browser); err == nil {
				cmd = exec.Command(browser, url)
				break
			}
		}
		if cmd == nil {
			return fmt.Errorf("no suitable browser found")
		}
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start browser command: %w", err)
	}
	return nil
}
