package preflight

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// versionPattern matches a dotted version number such as "27.3.1" inside
// arbitrary tool output. The first match wins, which is correct for
// "Docker version 27.3.1, build ce12230" style banners.
var versionPattern = regexp.MustCompile(`\d+(\.\d+)+`)

// extractVersion pulls the first dotted version number out of command
// output. Returns "" when no version-looking token is present.
func extractVersion(output string) string {
	return versionPattern.FindString(output)
}

// parseVersion splits a dotted version string into its integer components.
// "27.3.1" → [27, 3, 1]. Leading "v" prefixes are tolerated.
func parseVersion(s string) ([]int, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	if s == "" {
		return nil, fmt.Errorf("empty version string")
	}

	parts := strings.Split(s, ".")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid version component %q in %q", p, s)
		}
		nums = append(nums, n)
	}
	return nums, nil
}

// versionLess reports whether version a is strictly older than version b.
// Components are compared numerically left to right; missing components
// count as zero, so "24" and "24.0.0" compare equal.
func versionLess(a, b string) (bool, error) {
	av, err := parseVersion(a)
	if err != nil {
		return false, err
	}
	bv, err := parseVersion(b)
	if err != nil {
		return false, err
	}

	n := len(av)
	if len(bv) > n {
		n = len(bv)
	}
	for i := 0; i < n; i++ {
		var x, y int
		if i < len(av) {
			x = av[i]
		}
		if i < len(bv) {
			y = bv[i]
		}
		if x != y {
			return x < y, nil
		}
	}
	return false, nil
}
