package git

import (
	"context"
	"fmt"
	"strings"
)

// RevRange builds the symmetric-difference range expression between two
// commits. The expression denotes commits reachable from either side but not
// both. It is deterministic and order-sensitive, which makes it usable as a
// cache key for a (from, to) pair.
func RevRange(from, to string) string {
	return from + "..." + to
}

// SplitRevRange is the inverse of [RevRange]. Returns false if the
// expression is not a symmetric-difference range.
func SplitRevRange(revRange string) (from, to string, ok bool) {
	from, to, ok = strings.Cut(revRange, "...")
	if !ok || from == "" || to == "" {
		return "", "", false
	}
	return from, to, true
}

// CountDivergence counts commits on each side of a symmetric-difference
// range. ahead is the number of commits only reachable from the left side of
// the range, behind the number only reachable from the right side.
// ok is false when git produced no usable counts for the range.
func CountDivergence(ctx context.Context, repoPath, revRange string) (ahead, behind int, ok bool, err error) {
	out, err := outputGit(ctx, repoPath, "rev-list", "--left-right", "--count", revRange)
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to count divergence for %s: %v", revRange, err)
	}

	// Output is "<left>\t<right>"
	fields := strings.Fields(strings.TrimSpace(string(out)))
	if len(fields) != 2 {
		return 0, 0, false, nil
	}
	if _, err := fmt.Sscanf(fields[0], "%d", &ahead); err != nil {
		return 0, 0, false, nil
	}
	if _, err := fmt.Sscanf(fields[1], "%d", &behind); err != nil {
		return 0, 0, false, nil
	}
	return ahead, behind, true, nil
}
