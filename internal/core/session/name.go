// Package session contains the pure naming convention for terminal
// multiplexer sessions. Session names embed their concrete port so the
// reconciler can scope a session to a project's port block without trusting
// the name alone.
package session

import (
	"fmt"
	"strconv"
	"strings"
)

// Session kinds as they appear in session names.
const (
	KindArchitect = "architect"
	KindBuilder   = "builder"
	KindUtil      = "util"
	KindAnnotate  = "annotate"
)

// Name builds a session name, e.g. Name("af", "architect", 4201) ==
// "af-architect-4201".
func Name(prefix, kind string, port int) string {
	return fmt.Sprintf("%s-%s-%d", prefix, kind, port)
}

// Parse splits a session name into kind and port. ok is false when the name
// does not follow this tool's convention for the given prefix; such sessions
// belong to something else entirely and must be left alone.
func Parse(name, prefix string) (kind string, port int, ok bool) {
	rest, found := strings.CutPrefix(name, prefix+"-")
	if !found {
		return "", 0, false
	}
	idx := strings.LastIndex(rest, "-")
	if idx <= 0 || idx == len(rest)-1 {
		return "", 0, false
	}
	kind = rest[:idx]
	port, err := strconv.Atoi(rest[idx+1:])
	if err != nil || port <= 0 {
		return "", 0, false
	}
	switch kind {
	case KindArchitect, KindBuilder, KindUtil, KindAnnotate:
		return kind, port, true
	}
	return "", 0, false
}
