package analysis

import (
	"math"

	"github.com/nkmwicz/soccer-video-analysis/pkg/track"
)

// Match phase names.
const (
	PhasePregame    = "pregame"
	PhaseFirstHalf  = "first_half"
	PhaseHalftime   = "halftime"
	PhaseSecondHalf = "second_half"
	PhasePostgame   = "postgame"
)

// PhaseSegment is a named interval of match time. Segments for a video are
// chronologically ordered and may be sparse. A segment whose start and end
// coincide is a marker (a detected boundary, not a measured interval).
type PhaseSegment struct {
	Period     int
	Phase      string
	StartTimeS float64
	EndTimeS   float64
	StartFrame int
	EndFrame   int
}

// PhaseConfig controls the dwell/activity scanners. All values are empirical
// and pixel-scale dependent.
type PhaseConfig struct {
	DwellWindow          int     // frames per kickoff dwell window
	MaxDriftPx           float64 // max x/y extent for a window to count as a dwell
	SpeedThresholdPxS    float64 // ball speed that turns a dwell into a kickoff
	ActivityWindow       int     // frames per halftime activity window
	ActivityThresholdPx  float64 // spatial range below which a window is quiet
	MinHalftimeDurationS float64 // shorter quiet gaps are noise, not halftime
}

func DefaultPhaseConfig() PhaseConfig {
	return PhaseConfig{
		DwellWindow:          5,
		MaxDriftPx:           10.0,
		SpeedThresholdPxS:    80.0,
		ActivityWindow:       30,
		ActivityThresholdPx:  50.0,
		MinHalftimeDurationS: 300.0,
	}
}

// SegmentGamePhases detects kickoff, halftime and the second-half kickoff
// from ball-motion dynamics alone. No kickoff means no phases at all:
// partial phase information is worse than none.
func SegmentGamePhases(tracking track.TrackingResult, cfg PhaseConfig) []PhaseSegment {
	segments := []PhaseSegment{}

	ball, ok := tracking.PrimaryBallTrack()
	if !ok {
		return segments
	}
	frames := ball.Frames

	kick, ok := detectKickoff(frames, cfg, 0)
	if !ok {
		return segments
	}

	halfStart, halfEnd, haveHalftime := detectHalftime(frames, cfg, kick+1)
	if !haveHalftime {
		// Kickoff marker only.
		return append(segments, PhaseSegment{
			Period:     1,
			Phase:      PhaseFirstHalf,
			StartTimeS: frames[kick].TimeS,
			EndTimeS:   frames[kick].TimeS,
			StartFrame: frames[kick].FrameIndex,
			EndFrame:   frames[kick].FrameIndex,
		})
	}

	segments = append(segments,
		PhaseSegment{
			Period:     1,
			Phase:      PhaseFirstHalf,
			StartTimeS: frames[kick].TimeS,
			EndTimeS:   frames[halfStart].TimeS,
			StartFrame: frames[kick].FrameIndex,
			EndFrame:   frames[halfStart].FrameIndex,
		},
		PhaseSegment{
			Period:     1,
			Phase:      PhaseHalftime,
			StartTimeS: frames[halfStart].TimeS,
			EndTimeS:   frames[halfEnd].TimeS,
			StartFrame: frames[halfStart].FrameIndex,
			EndFrame:   frames[halfEnd].FrameIndex,
		},
	)

	// Second-half kickoff: same dwell-then-spike scan, but only at frames
	// at or after the halftime end.
	if kick2, ok := detectKickoff(frames, cfg, halfEnd); ok {
		segments = append(segments, PhaseSegment{
			Period:     2,
			Phase:      PhaseSecondHalf,
			StartTimeS: frames[kick2].TimeS,
			EndTimeS:   frames[kick2].TimeS,
			StartFrame: frames[kick2].FrameIndex,
			EndFrame:   frames[kick2].FrameIndex,
		})
	} else {
		last := frames[len(frames)-1]
		segments = append(segments, PhaseSegment{
			Period:     2,
			Phase:      PhaseSecondHalf,
			StartTimeS: frames[halfEnd].TimeS,
			EndTimeS:   last.TimeS,
			StartFrame: frames[halfEnd].FrameIndex,
			EndFrame:   last.FrameIndex,
		})
	}

	return segments
}

// detectKickoff slides a DwellWindow-frame window forward from startIdx and,
// for the first window whose spatial extent stays within MaxDriftPx, checks
// the central-difference speed at the window's final frame. A speed at or
// above SpeedThresholdPxS makes that frame the kickoff moment; otherwise the
// scan keeps sliding. Returns the index into frames of the kickoff frame.
func detectKickoff(frames []track.Frame, cfg PhaseConfig, startIdx int) (int, bool) {
	w := cfg.DwellWindow
	if w < 2 || startIdx < 0 {
		return 0, false
	}
	for i := startIdx; i+w <= len(frames); i++ {
		if spatialRange(frames[i:i+w]) > cfg.MaxDriftPx {
			continue
		}
		end := i + w - 1
		if end-1 < 0 || end+1 >= len(frames) {
			continue
		}
		if centralSpeed(frames, end) >= cfg.SpeedThresholdPxS {
			return end, true
		}
	}
	return 0, false
}

// detectHalftime finds the first quiet window followed, at least
// MinHalftimeDurationS later, by a window of resumed activity. A quicker
// resumption is treated as in-play noise and the scan continues past the
// false quiet window. Returns indices into frames of the halftime start and
// end.
func detectHalftime(frames []track.Frame, cfg PhaseConfig, startIdx int) (int, int, bool) {
	w := cfg.ActivityWindow
	if w < 2 || startIdx < 0 {
		return 0, 0, false
	}
	for i := startIdx; i+w <= len(frames); i++ {
		if spatialRange(frames[i:i+w]) >= cfg.ActivityThresholdPx {
			continue
		}
		for j := i + 1; j+w <= len(frames); j++ {
			if spatialRange(frames[j:j+w]) <= cfg.ActivityThresholdPx {
				continue
			}
			if frames[j].TimeS-frames[i].TimeS >= cfg.MinHalftimeDurationS {
				return i, j, true
			}
			break // resumed too soon: noise, rescan from the next window
		}
	}
	return 0, 0, false
}

// spatialRange returns the larger of the x and y extents across a window.
func spatialRange(window []track.Frame) float64 {
	minX, maxX := window[0].X, window[0].X
	minY, maxY := window[0].Y, window[0].Y
	for _, f := range window[1:] {
		minX = math.Min(minX, f.X)
		maxX = math.Max(maxX, f.X)
		minY = math.Min(minY, f.Y)
		maxY = math.Max(maxY, f.Y)
	}
	return math.Max(maxX-minX, maxY-minY)
}

// centralSpeed estimates the instantaneous ball speed at frame i from its
// two neighbors.
func centralSpeed(frames []track.Frame, i int) float64 {
	dt := math.Max(frames[i].TimeS-frames[i-1].TimeS, 1e-3)
	vx := (frames[i+1].X - frames[i-1].X) / (2 * dt)
	vy := (frames[i+1].Y - frames[i-1].Y) / (2 * dt)
	return math.Hypot(vx, vy)
}
