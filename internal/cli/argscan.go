package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// optionSpec binds one flag and its aliases to a setter. Flags may appear
// anywhere on a dispatch line, so the scanner returns the remaining words in
// their original order.
type optionSpec struct {
	Names      []string
	TakesValue bool
	Set        func(string) error
}

type optionIndex map[string]optionSpec

func indexOptions(specs []optionSpec) optionIndex {
	index := optionIndex{}
	for _, spec := range specs {
		for _, name := range spec.Names {
			if key := strings.TrimSpace(name); key != "" {
				index[key] = spec
			}
		}
	}
	return index
}

func scanOptions(args []string, specs []optionSpec) ([]string, error) {
	rest, _, err := scanArgs(args, specs, false)
	return rest, err
}

// scanPrompt is scanOptions for free text: once a positional word has been
// seen, a dash word naming no known flag stays in the returned words instead
// of failing. kept lists those words.
func scanPrompt(args []string, specs []optionSpec) (rest, kept []string, err error) {
	return scanArgs(args, specs, true)
}

func scanArgs(args []string, specs []optionSpec, keepUnknown bool) ([]string, []string, error) {
	index := indexOptions(specs)

	rest := make([]string, 0, len(args))
	var kept []string
	for i := 0; i < len(args); i++ {
		arg := strings.TrimSpace(args[i])
		switch {
		case arg == "":
			continue
		case arg == "--":
			return append(rest, args[i+1:]...), kept, nil
		case !isOptionToken(arg):
			rest = append(rest, args[i])
			continue
		}

		name, value, hasValue := parseOptionToken(arg)
		spec, ok := index[name]
		if !ok {
			if keepUnknown && len(rest) > 0 {
				rest = append(rest, args[i])
				kept = append(kept, arg)
				continue
			}
			return nil, nil, index.unknown(arg, name)
		}

		if !spec.TakesValue {
			if hasValue {
				return nil, nil, fmt.Errorf("%s does not accept a value", formatFlagName(name))
			}
			if err := spec.apply(""); err != nil {
				return nil, nil, err
			}
			continue
		}

		if !hasValue {
			if i+1 >= len(args) {
				return nil, nil, fmt.Errorf("%s requires a value", formatFlagName(name))
			}
			i++
			value = args[i]
		}
		if strings.TrimSpace(value) == "" {
			return nil, nil, fmt.Errorf("%s requires a non-empty value", formatFlagName(name))
		}
		if err := spec.apply(value); err != nil {
			return nil, nil, err
		}
	}

	return rest, kept, nil
}

// flagHints returns a warning for each kept word that looks like a mistyped
// flag. Words with no close flag, such as "-rf", get none.
func flagHints(kept []string, specs []optionSpec) []string {
	index := indexOptions(specs)
	var hints []string
	for _, arg := range kept {
		name, _, _ := parseOptionToken(arg)
		if guess := index.closest(name); guess != "" {
			hints = append(hints, fmt.Sprintf("%s is not a flag and was kept in the prompt (did you mean %s?)", arg, formatFlagName(guess)))
		}
	}
	return hints
}

func (s optionSpec) apply(value string) error {
	if s.Set == nil {
		return nil
	}
	return s.Set(value)
}

// unknown builds the error for an unrecognised flag, naming the closest
// known spelling when one shares a prefix with it.
func (idx optionIndex) unknown(arg, name string) error {
	if guess := idx.closest(name); guess != "" {
		return fmt.Errorf("unknown option %q (did you mean %s?)", arg, formatFlagName(guess))
	}
	return fmt.Errorf("unknown option %q (use --help)", arg)
}

func (idx optionIndex) closest(name string) string {
	name = strings.ToLower(name)
	if len(name) < 2 {
		return ""
	}
	candidates := make([]string, 0, len(idx))
	for known := range idx {
		if len(known) < 2 {
			continue
		}
		if strings.HasPrefix(known, name) || strings.HasPrefix(name, known) {
			candidates = append(candidates, known)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Slice(candidates, func(i, j int) bool {
		if len(candidates[i]) != len(candidates[j]) {
			return len(candidates[i]) < len(candidates[j])
		}
		return candidates[i] < candidates[j]
	})
	return candidates[0]
}

// isOptionToken reports whether arg should be read as a flag. A lone dash and
// negative numbers stay in the prompt.
func isOptionToken(arg string) bool {
	if !strings.HasPrefix(arg, "-") || arg == "-" {
		return false
	}
	if _, err := strconv.ParseFloat(arg, 64); err == nil {
		return false
	}
	return true
}

func parseOptionToken(arg string) (name, value string, hasValue bool) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
	name, value, hasValue = strings.Cut(trimmed, "=")
	return name, value, hasValue
}

func formatFlagName(name string) string {
	if len(name) == 1 {
		return "-" + name
	}
	return "--" + name
}

func isHelpToken(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "help", "-h", "--help":
		return true
	}
	return false
}

func containsHelpFlag(args []string) bool {
	for _, arg := range args {
		if isHelpToken(arg) {
			return true
		}
	}
	return false
}
