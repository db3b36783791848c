package report

import "fmt"

// plural formats n with the singular or plural form of noun.
func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, pluralForm)
}

func commits(n int) string {
	return plural(n, "commit", "commits")
}

// visibleCommits returns how many of n commits to print with the given limit.
// Truncating a single commit would print a summary as long as the line it hides,
// so n == limit+1 shows everything. A limit of 0 prints no commit lines at all.
func visibleCommits(n, limit int, all bool) int {
	switch {
	case all || n <= limit:
		return n
	case limit == 0:
		return 0
	case n-limit == 1:
		return n
	}
	return min(limit, n)
}
