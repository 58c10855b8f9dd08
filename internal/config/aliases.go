package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// DefaultToken selects the configured default backends on a request line.
const DefaultToken = "default"

// SplitBackends splits a comma-separated backend list, lower-casing and
// trimming each name and dropping blanks. Order and duplicates are kept.
func SplitBackends(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		name := normalizeName(part)
		if name == "" {
			continue
		}
		out = append(out, name)
	}
	return out
}

func joinBackends(names []string) string {
	return strings.Join(names, ",")
}

// LoadEnvAliases reads POLYMIND_ALIASES, a JSON object of alias name to
// comma-separated backends. Stored aliases shadow these.
func (c *Config) LoadEnvAliases() error {
	raw := strings.TrimSpace(os.Getenv(envAliases))
	if raw == "" {
		return nil
	}
	var parsed map[string]string
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return fmt.Errorf("decode %s: %w", envAliases, err)
	}
	c.envAliases = make(map[string]string, len(parsed))
	for name, members := range parsed {
		name = normalizeName(name)
		members = joinBackends(SplitBackends(members))
		if name == "" || members == "" {
			continue
		}
		c.envAliases[name] = members
	}
	return nil
}

// SetAlias stores an alias. Names are case-insensitive and may not contain
// commas, since an alias stands where a backend list would.
func (c *Config) SetAlias(name string, backends []string) error {
	name = normalizeName(name)
	if name == "" {
		return fmt.Errorf("alias name is required")
	}
	if strings.ContainsAny(name, ", \t") {
		return fmt.Errorf("alias name %q must not contain commas or spaces", name)
	}
	members := SplitBackends(strings.Join(backends, ","))
	if len(members) == 0 {
		return fmt.Errorf("alias %q needs at least one backend", name)
	}
	c.normalize()
	c.Aliases[name] = joinBackends(members)
	return nil
}

// RemoveAlias deletes a stored alias and reports whether it existed.
func (c *Config) RemoveAlias(name string) bool {
	name = normalizeName(name)
	if _, ok := c.Aliases[name]; !ok {
		return false
	}
	delete(c.Aliases, name)
	return true
}

// AliasTable returns the effective aliases: environment aliases overlaid by
// stored ones.
func (c *Config) AliasTable() map[string]string {
	table := make(map[string]string, len(c.envAliases)+len(c.Aliases))
	for name, members := range c.envAliases {
		table[name] = members
	}
	for name, members := range c.Aliases {
		table[name] = members
	}
	return table
}

// AliasNames returns the effective alias names, sorted.
func (c *Config) AliasNames() []string {
	table := c.AliasTable()
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExpandBackends turns the backend token of a request into backend names. A
// token naming an alias expands to its members; anything else is read as a
// comma-separated list. The token "default" names DefaultBackends unless an
// alias claims it.
func (c *Config) ExpandBackends(token string) []string {
	name := normalizeName(token)
	if members, ok := c.AliasTable()[name]; ok {
		return SplitBackends(members)
	}
	if name == DefaultToken && len(c.DefaultBackends) > 0 {
		return append([]string(nil), c.DefaultBackends...)
	}
	return SplitBackends(token)
}
