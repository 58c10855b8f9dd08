package render

import "strings"

// ShellScript builds a bash script that replays the request one backend at a
// time. It is produced from the request alone; nothing is dispatched.
func ShellScript(backends []string, prompt string) string {
	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	for _, name := range backends {
		b.WriteString("echo " + shellQuote("["+name+"]") + "\n")
		b.WriteString("polymind " + shellQuote(name) + " " + shellQuote(prompt) + "\n\n")
	}
	return b.String()
}

// shellQuote wraps s in single quotes, which disable every expansion in sh.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
