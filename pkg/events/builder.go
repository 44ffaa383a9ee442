package events

import (
	"strings"

	"github.com/google/uuid"

	"github.com/nkmwicz/soccer-video-analysis/pkg/analysis"
	"github.com/nkmwicz/soccer-video-analysis/pkg/pitch"
	"github.com/nkmwicz/soccer-video-analysis/pkg/track"
)

// Event is the final joined output record for one detected action. It is
// created once per candidate and never mutated afterwards. Period 0 and
// empty strings mean the field could not be resolved.
type Event struct {
	GameID        string
	EventID       string
	Period        int
	Phase         string
	PossessionID  string
	TeamColor     string
	TeamName      string
	PlayerNumber  string
	PlayerTrackID string
	BallTrackID   string
	Action        string
	Subaction     string
	StartFrame    int
	EndFrame      int
	StartTimeS    float64
	EndTimeS      float64
	StartX        float64
	StartY        float64
	EndX          float64
	EndY          float64
	Confidence    float64
}

type phaseAt struct {
	period int
	phase  string
}

// BuildActionEvents joins action candidates with track metadata, possession
// intervals and phase intervals into final events. Candidates whose acting
// player cannot be resolved in the tracking snapshot are dropped, not
// errored. Pixel endpoints are converted to pitch space via the mapper; if
// either endpoint cannot be mapped, both fall back to pixel coordinates so
// one event never mixes coordinate systems. Possession and phase are looked
// up by the candidate's start frame. teamNames maps lower-case team colors
// to display names; unresolvable colors leave the name empty.
func BuildActionEvents(
	gameID string,
	candidates []analysis.ActionCandidate,
	tracking track.TrackingResult,
	mapper *pitch.Mapper,
	possessions []analysis.PossessionSegment,
	phases []analysis.PhaseSegment,
	teamNames map[string]string,
) []Event {
	events := []Event{}

	trackMap := make(map[string]track.Track, len(tracking.PlayerTracks))
	for _, t := range tracking.PlayerTracks {
		trackMap[t.TrackID] = t
	}
	possessionMap := buildPossessionMap(possessions)
	phaseMap := buildPhaseMap(phases)

	for _, c := range candidates {
		player, ok := trackMap[c.PlayerTrackID]
		if !ok {
			continue
		}

		startX, startY, startOK := mapper.TransformPoint(c.StartX, c.StartY, c.StartFrame)
		endX, endY, endOK := mapper.TransformPoint(c.EndX, c.EndY, c.EndFrame)
		if !startOK || !endOK {
			startX, startY = c.StartX, c.StartY
			endX, endY = c.EndX, c.EndY
		}

		at := phaseMap[c.StartFrame]
		events = append(events, Event{
			GameID:        gameID,
			EventID:       uuid.NewString()[:8],
			Period:        at.period,
			Phase:         at.phase,
			PossessionID:  possessionMap[c.StartFrame],
			TeamColor:     player.TeamColor,
			TeamName:      teamNames[strings.ToLower(player.TeamColor)],
			PlayerNumber:  player.JerseyNumber,
			PlayerTrackID: c.PlayerTrackID,
			BallTrackID:   c.BallTrackID,
			Action:        c.Action,
			Subaction:     c.Subaction,
			StartFrame:    c.StartFrame,
			EndFrame:      c.EndFrame,
			StartTimeS:    c.StartTimeS,
			EndTimeS:      c.EndTimeS,
			StartX:        startX,
			StartY:        startY,
			EndX:          endX,
			EndY:          endY,
			Confidence:    c.Confidence,
		})
	}

	return events
}

// buildPossessionMap expands each segment's inclusive frame range into
// per-frame entries. Later segments overwrite earlier ones on overlap;
// upstream guarantees non-overlap, so this is defensive only.
func buildPossessionMap(segments []analysis.PossessionSegment) map[int]string {
	m := make(map[int]string)
	for _, s := range segments {
		for frame := s.StartFrame; frame <= s.EndFrame; frame++ {
			m[frame] = s.PossessionID
		}
	}
	return m
}

func buildPhaseMap(segments []analysis.PhaseSegment) map[int]phaseAt {
	m := make(map[int]phaseAt)
	for _, s := range segments {
		for frame := s.StartFrame; frame <= s.EndFrame; frame++ {
			m[frame] = phaseAt{period: s.Period, phase: s.Phase}
		}
	}
	return m
}
