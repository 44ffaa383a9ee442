package analysis

import (
	"math"

	"github.com/nkmwicz/soccer-video-analysis/pkg/track"
)

// indexedPlayer pairs a player track with its frame index so repeated
// "who is at frame N" queries are O(1) instead of a scan per query.
type indexedPlayer struct {
	track track.Track
	index track.FrameIndex
}

// distTo returns the player's distance to the ball observation at the same
// frame index, or +Inf if the player has no observation there.
func (p *indexedPlayer) distTo(ball track.Frame) float64 {
	f, ok := p.index[ball.FrameIndex]
	if !ok {
		return math.Inf(1)
	}
	return math.Hypot(f.X-ball.X, f.Y-ball.Y)
}

func indexPlayers(players []track.Track) []indexedPlayer {
	indexed := make([]indexedPlayer, 0, len(players))
	for _, p := range players {
		indexed = append(indexed, indexedPlayer{track: p, index: p.ByFrame()})
	}
	return indexed
}

// nearestPlayer returns the player closest to the ball observation at the
// same frame index, or nil if no player is strictly within maxDist. Players
// without an observation at that exact frame are not candidates. Distance
// ties keep the first player in input order.
func nearestPlayer(players []indexedPlayer, ball track.Frame, maxDist float64) *indexedPlayer {
	minDist := maxDist
	var nearest *indexedPlayer
	for i := range players {
		d := players[i].distTo(ball)
		if d < minDist {
			minDist = d
			nearest = &players[i]
		}
	}
	return nearest
}

// nearbyPlayers returns every player strictly within maxDist of the ball at
// the same frame index, in input order.
func nearbyPlayers(players []indexedPlayer, ball track.Frame, maxDist float64) []*indexedPlayer {
	var nearby []*indexedPlayer
	for i := range players {
		if players[i].distTo(ball) < maxDist {
			nearby = append(nearby, &players[i])
		}
	}
	return nearby
}

// sameTeam reports whether two players have the same, known team color.
// Unknown colors never match.
func sameTeam(a, b *indexedPlayer) bool {
	return a.track.TeamColor != "" && a.track.TeamColor == b.track.TeamColor
}

// differentTeam reports whether two players have known, different team
// colors. Unknown colors never count as opponents either.
func differentTeam(a, b *indexedPlayer) bool {
	return a.track.TeamColor != "" && b.track.TeamColor != "" && a.track.TeamColor != b.track.TeamColor
}
