/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestPassAmount(t *testing.T) {
	tests := []struct {
		name    string
		players int
		want    []int // indexed by round
	}{
		{"three players", 3, []int{0, 1, 2, 3}},
		{"four players", 4, []int{0, 0, 1, 2, 3, 4}},
		{"five players", 5, []int{0, 1, 2, 3, 4, 5}},
		{"six players", 6, []int{0, 0, 1, 2, 3, 4, 5, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]int, len(tt.want))
			for round := range tt.want {
				got[round] = PassAmount(round, tt.players)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("PassAmount mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOwnerIndex(t *testing.T) {
	// Four players, round 2: each player holds the book of the player to
	// their right.
	got := make([]int, 4)
	for i := range got {
		got[i] = OwnerIndex(i, 2, 4)
	}
	if diff := cmp.Diff([]int{3, 0, 1, 2}, got); diff != "" {
		t.Errorf("OwnerIndex mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 0, OwnerIndex(0, 0, 3))
	assert.Equal(t, 2, OwnerIndex(0, 1, 3))
	assert.Equal(t, 1, OwnerIndex(0, 2, 3))
}

func TestOwnerIndexIsPermutation(t *testing.T) {
	for n := MinPlayers; n <= MaxPlayers; n++ {
		for round := 0; round <= LastRound(n); round++ {
			seen := make(map[int]bool, n)
			for i := range n {
				owner := OwnerIndex(i, round, n)
				assert.GreaterOrEqual(t, owner, 0)
				assert.Less(t, owner, n)
				seen[owner] = true
			}
			assert.Len(t, seen, n, "n=%d round=%d", n, round)
		}
	}
}

func TestLastRound(t *testing.T) {
	want := map[int]int{3: 2, 4: 4, 5: 4, 6: 6, 7: 6, 8: 8}

	for n, last := range want {
		assert.Equal(t, last, LastRound(n), "players=%d", n)
		assert.True(t, finishesAfter(last, n), "players=%d should finish after round %d", n, last)
		assert.False(t, finishesAfter(last-1, n), "players=%d should not finish after round %d", n, last-1)
	}
}

func TestEveryPlayerSeesEveryOtherBook(t *testing.T) {
	for n := MinPlayers; n <= MaxPlayers; n++ {
		for owner := range n {
			writers := make(map[int]bool)
			for round := 1; round <= LastRound(n); round++ {
				for i := range n {
					if OwnerIndex(i, round, n) == owner {
						writers[i] = true
					}
				}
			}
			for i := range n {
				if i != owner {
					assert.True(t, writers[i], "n=%d: player %d never wrote in book %d", n, i, owner)
				}
			}
		}
	}
}

func TestMod(t *testing.T) {
	assert.Equal(t, 2, mod(-1, 3))
	assert.Equal(t, 0, mod(-6, 3))
	assert.Equal(t, 1, mod(7, 3))
}

func TestBookVisitsOncePerPlayer(t *testing.T) {
	for n := MinPlayers; n <= MaxPlayers; n++ {
		for owner := range n {
			visits := make(map[int]int)
			for round := 1; round <= LastRound(n); round++ {
				for i := range n {
					if OwnerIndex(i, round, n) != owner {
						continue
					}
					visits[i]++
					if i == owner {
						if n%2 == 1 {
							t.Errorf("n=%d: player %d got their own book in round %d", n, i, round)
						} else if round != 1 {
							t.Errorf("n=%d: player %d got their own book in round %d, want only round 1", n, i, round)
						}
					}
				}
			}
			for i, v := range visits {
				assert.Equal(t, 1, v, "n=%d: player %d visited book %d %d times", n, i, owner, v)
			}
		}
	}
}
