package roll

import (
	"cmp"
	"slices"

	"github.com/louisbranch/kobold-keeper/internal/dice/notation"
)

// applyKeepDrop marks which dice survive kd. Drop modes are expressed as the
// complementary keep: dropping the n lowest keeps the count-n highest. The
// selection sorts a copy of the indexes, so dice stay in display order. Equal
// values are ordered by index, so the lower index is retained on a tie.
func applyKeepDrop(dice []Die, kd notation.KeepDrop) {
	keep := kd.N
	if !kd.Mode.Keeps() {
		keep = len(dice) - kd.N
	}
	descending := kd.Mode == notation.KeepHigh || kd.Mode == notation.DropLow

	order := make([]int, len(dice))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		if c := cmp.Compare(dice[a].Value, dice[b].Value); c != 0 {
			if descending {
				return -c
			}
			return c
		}
		return cmp.Compare(a, b)
	})

	for rank, i := range order {
		dice[i].Kept = rank < keep
	}
}
