// Package balance implements the team split search: given an even pool of
// players with average ADR values, find the half/half split whose ADR sums
// are closest.
package balance

import (
	"math"

	"telegram-match-bot/internal/domain"
)

// DefaultADR is assumed for players without any stat history.
const DefaultADR = 75.0

type Player struct {
	ID   string
	Name string
	ADR  float64
}

type Split struct {
	Team1 []Player
	Team2 []Player
	Sum1  float64
	Sum2  float64
	Diff  float64
}

// Teams enumerates every split of pool into two equal halves and returns the
// one minimizing |sum(ADR team1) - sum(ADR team2)|. The pool must have an
// even size >= 2. The first player is fixed into team 1, which halves the
// search space and makes the result independent of mirror symmetry; ties are
// resolved by enumeration order, so the result is deterministic for a given
// pool order.
func Teams(pool []Player) (Split, error) {
	n := len(pool)
	if n < 2 || n%2 != 0 {
		return Split{}, domain.ErrInvalidArgument
	}
	half := n / 2

	var total float64
	for _, p := range pool {
		total += p.ADR
	}

	best := Split{Diff: math.Inf(1)}

	// idx holds positions of team-1 members beyond pool[0].
	idx := make([]int, half-1)
	for i := range idx {
		idx[i] = i + 1
	}

	for {
		var sum1 float64 = pool[0].ADR
		for _, i := range idx {
			sum1 += pool[i].ADR
		}
		diff := math.Abs(2*sum1 - total)
		if diff < best.Diff {
			best = Split{Sum1: sum1, Sum2: total - sum1, Diff: diff}
			best.Team1 = make([]Player, 0, half)
			best.Team1 = append(best.Team1, pool[0])
			in1 := make(map[int]bool, half)
			in1[0] = true
			for _, i := range idx {
				best.Team1 = append(best.Team1, pool[i])
				in1[i] = true
			}
			best.Team2 = make([]Player, 0, half)
			for i := 0; i < n; i++ {
				if !in1[i] {
					best.Team2 = append(best.Team2, pool[i])
				}
			}
			if best.Diff == 0 {
				return best, nil
			}
		}
		if !next(idx, n) {
			break
		}
	}
	return best, nil
}

// next advances idx to the following combination of positions in [1, n).
// Returns false when the enumeration is exhausted.
func next(idx []int, n int) bool {
	k := len(idx)
	if k == 0 {
		return false
	}
	for i := k - 1; i >= 0; i-- {
		if idx[i] < n-(k-i) {
			idx[i]++
			for j := i + 1; j < k; j++ {
				idx[j] = idx[j-1] + 1
			}
			return true
		}
	}
	return false
}
