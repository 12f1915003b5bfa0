// Package selection parses operator episode selections: single indices,
// comma-separated lists, numeric ranges, and "all".
package selection

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Parse converts a 1-based selection expression like "1,3-5,8" into sorted,
// deduplicated 0-based indices against available items. "all" selects every
// index. Empty input and out-of-range indices are errors.
func Parse(input string, available int) ([]int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty selection")
	}
	if available <= 0 {
		return nil, fmt.Errorf("nothing to select from")
	}

	if strings.EqualFold(input, "all") {
		indices := make([]int, available)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}

	seen := make(map[int]struct{})
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty selection element in %q", input)
		}

		low, high, err := parsePart(part)
		if err != nil {
			return nil, err
		}
		for n := low; n <= high; n++ {
			if n < 1 || n > available {
				return nil, fmt.Errorf("selection %d out of range 1-%d", n, available)
			}
			seen[n-1] = struct{}{}
		}
	}

	indices := make([]int, 0, len(seen))
	for idx := range seen {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices, nil
}

func parsePart(part string) (low, high int, err error) {
	if before, after, found := strings.Cut(part, "-"); found {
		low, err = strconv.Atoi(strings.TrimSpace(before))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid range start in %q", part)
		}
		high, err = strconv.Atoi(strings.TrimSpace(after))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid range end in %q", part)
		}
		if high < low {
			return 0, 0, fmt.Errorf("descending range %q", part)
		}
		return low, high, nil
	}

	n, err := strconv.Atoi(part)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid selection %q", part)
	}
	return n, n, nil
}
