// Package clipboard copies text to the system clipboard through whichever
// platform tool is installed.
package clipboard

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrEmpty is returned when there is nothing to copy.
var ErrEmpty = errors.New("clipboard text is empty")

type command struct {
	name string
	args []string
}

// Copy writes text to the clipboard of the running platform.
func Copy(text string) error {
	return copyWith(text, runtime.GOOS)
}

func copyWith(text string, goos string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmpty
	}

	var tried []string
	for _, c := range commands(goos) {
		if _, err := exec.LookPath(c.name); err != nil {
			tried = append(tried, c.name)
			continue
		}
		cmd := exec.Command(c.name, c.args...)
		cmd.Stdin = strings.NewReader(text)
		if err := cmd.Run(); err == nil {
			return nil
		}
		tried = append(tried, c.name)
	}
	return fmt.Errorf("no working clipboard command found (tried %s)", strings.Join(tried, ", "))
}

func commands(goos string) []command {
	switch goos {
	case "darwin":
		return []command{{name: "pbcopy"}}
	case "windows":
		return []command{{name: "cmd", args: []string{"/c", "clip"}}}
	default:
		return []command{
			{name: "wl-copy"},
			{name: "xclip", args: []string{"-selection", "clipboard"}},
			{name: "xsel", args: []string{"--clipboard", "--input"}},
		}
	}
}
