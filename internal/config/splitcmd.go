package config

import (
	"fmt"
	"strings"
)

// SplitCommand splits a pipe command line into argv, honoring single and
// double quotes so key IDs or paths with spaces survive. No variable
// expansion or escapes beyond that; pipe commands are simple filter
// invocations, not shell scripts.
func SplitCommand(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quote   rune
		inWord  bool
	)

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unbalanced quote in command %q", line)
	}
	if inWord {
		args = append(args, current.String())
	}
	return args, nil
}
