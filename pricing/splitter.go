package pricing

import (
	"strconv"
)

// Price bounds a concatenated half must fall in to count as a plausible
// vehicle price. The widened band is only consulted when the strict one
// produces no candidate at all.
const (
	strictLow   = 500
	strictHigh  = 200000
	widenedLow  = 100
	widenedHigh = 300000
)

type splitCandidate struct {
	left  int
	right int
	score float64
}

// SplitConcatenatedPrice recovers a price from a digit run formed by
// two prices joined without a separator ("113308995" = 11330 then
// 8995). Every split point leaving at least three digits per side is
// tried, a right half may not start with 0, and both halves must fall
// in the plausible band. Splits are scored by how balanced the two
// halves are (min/max minus a penalty of 0.1 per digit of length
// difference) and the right half of the best split wins: markup puts
// the current price after the old one. Returns 0 when no split
// qualifies.
func SplitConcatenatedPrice(digits string) float64 {
	if !allDigits(digits) || len(digits) < 6 {
		return 0
	}

	best := bestSplit(digits, strictLow, strictHigh)
	if best == nil {
		best = bestSplit(digits, widenedLow, widenedHigh)
	}
	if best == nil {
		return 0
	}

	return float64(best.right)
}

func bestSplit(digits string, low, high int) *splitCandidate {
	var best *splitCandidate

	for cut := 3; cut <= len(digits)-3; cut++ {
		leftStr, rightStr := digits[:cut], digits[cut:]
		if rightStr[0] == '0' {
			continue
		}

		left, errL := strconv.Atoi(leftStr)
		right, errR := strconv.Atoi(rightStr)
		if errL != nil || errR != nil {
			continue
		}
		if left < low || left > high || right < low || right > high {
			continue
		}

		balance := float64(min(left, right)) / float64(max(left, right))
		penalty := 0.1 * float64(abs(len(leftStr)-len(rightStr)))
		score := balance - penalty

		if best == nil || score > best.score {
			best = &splitCandidate{left: left, right: right, score: score}
		}
	}

	return best
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
