package risk

import "strings"

// Package runners launch a named package fetched from a registry; the first
// non-flag argument is the package identity.
var packageRunners = map[string]struct{}{
	"npx":  {},
	"bunx": {},
	"pnpx": {},
	"uvx":  {},
	"pipx": {},
}

// Interpreters execute local files, so no registry identity can be derived.
var interpreters = map[string]struct{}{
	"node":    {},
	"python":  {},
	"python3": {},
	"deno":    {},
	"bun":     {},
	"ruby":    {},
	"bash":    {},
	"sh":      {},
	"zsh":     {},
	"cmd":     {},
	"docker":  {},
}

// ExtractIdentity derives the registry package identity of a server launch,
// if any, and whether that identity carries a version pin.
//
// Runner commands (npx and friends) yield their first non-flag argument.
// Interpreters yield nothing. A bare command that looks like a package name
// yields itself.
func ExtractIdentity(command string, args []string) (name string, pinned bool) {
	base := commandBase(command)
	if _, ok := packageRunners[base]; ok {
		for _, a := range args {
			if strings.HasPrefix(a, "-") || a == "run" || a == "exec" {
				continue
			}
			return splitVersionPin(a)
		}
		return "", false
	}
	if _, ok := interpreters[base]; ok {
		return "", false
	}
	// A pathed command is a local binary, not a registry package.
	if strings.ContainsAny(command, "/\\") {
		return "", false
	}
	if looksLikePackage(base) {
		return splitVersionPin(base)
	}
	return "", false
}

func commandBase(command string) string {
	c := command
	if i := strings.LastIndexAny(c, "/\\"); i >= 0 {
		c = c[i+1:]
	}
	return strings.TrimSuffix(strings.ToLower(c), ".exe")
}

// splitVersionPin removes a trailing @version from a package spec. The scope
// sigil of names like @scope/pkg is not a pin.
func splitVersionPin(spec string) (string, bool) {
	at := strings.LastIndex(spec, "@")
	if at <= 0 {
		return spec, false
	}
	// An @ inside the scope segment is the scope sigil, not a pin.
	if slash := strings.Index(spec, "/"); slash >= 0 && at < slash {
		return spec, false
	}
	return spec[:at], true
}

// looksLikePackage reports whether a bare command name resembles a registry
// package rather than a local binary path.
func looksLikePackage(base string) bool {
	if base == "" {
		return false
	}
	if strings.HasPrefix(base, "@") {
		return true
	}
	return strings.Contains(base, "-") && !strings.ContainsAny(base, " ")
}
