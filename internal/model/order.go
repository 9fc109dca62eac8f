package model

import (
	"sort"
	"strconv"
	"strings"
)

// CompareCaptures orders capture-group strings so that window indices sort
// the way people read them: when both strings are base-10 integers they are
// compared numerically ("2" < "10", "03" == "3"), otherwise byte-wise.
func CompareCaptures(a, b string) int {
	ia, errA := strconv.Atoi(a)
	ib, errB := strconv.Atoi(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	switch {
	case ia < ib:
		return -1
	case ia > ib:
		return 1
	default:
		return 0
	}
}

// SortByCapture sorts matches in place by capture value. Equal captures keep
// their enumeration order.
func SortByCapture(matches []MatchedWindow) {
	sort.SliceStable(matches, func(i, j int) bool {
		return CompareCaptures(matches[i].Capture, matches[j].Capture) < 0
	})
}
