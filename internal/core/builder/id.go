package builder

import (
	"fmt"
	"strings"

	"github.com/lithammer/shortuuid/v3"
)

// tokenLength is the length of random identifier tokens. Six characters of
// the shortuuid alphabet give far more space than the tens of simultaneous
// builders ever present; the store's port uniqueness constraint is the
// correctness backstop, not the randomness.
const tokenLength = 6

// NewToken returns a short random lowercase token.
func NewToken() string {
	return strings.ToLower(shortuuid.New())[:tokenLength]
}

// SpecID returns the stable identifier for a builder tied to a numbered
// specification, e.g. SpecID(12) == "spec-012".
func SpecID(n int) string {
	return fmt.Sprintf("spec-%03d", n)
}

// NewID generates an identifier for a builder that is not spec-derived.
func NewID(kind Kind) string {
	return fmt.Sprintf("%s-%s", kind, NewToken())
}

// BranchName returns the deterministic branch name for a builder identifier.
func BranchName(id string) string {
	return "af/" + id
}

// WorkspaceDirName returns the directory name for a builder's worktree,
// relative to the configured worktree base.
func WorkspaceDirName(id string) string {
	return id
}

// ParseSpecNumber extracts the spec number from a spec-derived identifier.
// Returns -1 if the identifier is not spec-derived.
func ParseSpecNumber(id string) int {
	var n int
	if _, err := fmt.Sscanf(id, "spec-%d", &n); err != nil {
		return -1
	}
	return n
}
