/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

// PassAmount is how many seats a book has moved left of its owner in the
// given round. Round 0 is always the owner's own book. With an even number of
// players round 1 is spent drawing one's own topic, so passing starts one
// round later; otherwise a book would come back to its owner half way round.
func PassAmount(round, playerCount int) int {
	if round <= 0 {
		return 0
	}
	if playerCount%2 == 0 {
		return round - 1
	}
	return round
}

// OwnerIndex returns the index of the player whose book playerIndex holds in
// the given round.
func OwnerIndex(playerIndex, round, playerCount int) int {
	return mod(playerIndex-PassAmount(round, playerCount), playerCount)
}

// LastRound is the final round played before the room finishes.
func LastRound(playerCount int) int {
	if playerCount%2 == 0 {
		return playerCount
	}
	return playerCount - 1
}

// finishesAfter reports whether completing round ends the game, i.e. the
// next round would hand a book back around a full lap.
func finishesAfter(round, playerCount int) bool {
	return PassAmount(round+1, playerCount) >= playerCount
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
