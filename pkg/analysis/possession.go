package analysis

import (
	"fmt"

	"github.com/nkmwicz/soccer-video-analysis/pkg/track"
)

// PossessionSegment is one uninterrupted interval where a single player was
// the ball's nearest tracked entity. Segments for one video are sorted and
// non-overlapping in frame range.
type PossessionSegment struct {
	PossessionID  string
	TeamColor     string
	PlayerTrackID string
	StartTimeS    float64
	EndTimeS      float64
	StartFrame    int
	EndFrame      int
}

// PossessionConfig controls the ownership state machine.
type PossessionConfig struct {
	MaxBallDistancePx   float64 // a player farther than this never owns the ball
	MinSegmentDurationS float64 // shorter ownership intervals are discarded as noise
}

func DefaultPossessionConfig() PossessionConfig {
	return PossessionConfig{
		MaxBallDistancePx:   60.0,
		MinSegmentDurationS: 0.1,
	}
}

// InferPossessions folds a current-owner state machine over the primary ball
// track. At each ball frame the nearest player within MaxBallDistancePx (at
// the same frame index, no interpolation) is the candidate owner; when the
// owner changes, the pending segment is closed at the previous ball frame
// and emitted if the owner was known and the interval lasted at least
// MinSegmentDurationS. Distance ties go to the first player in input order.
func InferPossessions(tracking track.TrackingResult, cfg PossessionConfig) []PossessionSegment {
	segments := []PossessionSegment{}

	ball, ok := tracking.PrimaryBallTrack()
	if !ok || len(tracking.PlayerTracks) == 0 {
		return segments
	}

	players := indexPlayers(tracking.PlayerTracks)

	var (
		ownerID    string
		ownerColor string
		start      track.Frame
		prev       track.Frame
		open       bool
	)

	flush := func(end track.Frame) {
		if ownerID == "" {
			return
		}
		if end.TimeS-start.TimeS < cfg.MinSegmentDurationS {
			return
		}
		segments = append(segments, PossessionSegment{
			PossessionID:  fmt.Sprintf("pos-%03d", len(segments)+1),
			TeamColor:     ownerColor,
			PlayerTrackID: ownerID,
			StartTimeS:    start.TimeS,
			EndTimeS:      end.TimeS,
			StartFrame:    start.FrameIndex,
			EndFrame:      end.FrameIndex,
		})
	}

	for _, bf := range ball.Frames {
		id, color := "", ""
		if nearest := nearestPlayer(players, bf, cfg.MaxBallDistancePx); nearest != nil {
			id, color = nearest.track.TrackID, nearest.track.TeamColor
		}

		if !open {
			open = true
			ownerID, ownerColor = id, color
			start = bf
		} else if id != ownerID {
			flush(prev)
			ownerID, ownerColor = id, color
			start = bf
		}
		prev = bf
	}

	if open {
		flush(prev)
	}

	return segments
}
