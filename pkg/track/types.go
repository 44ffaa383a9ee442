package track

import "math"

// Label values assigned by the tracker backend.
const (
	LabelPlayer = "player"
	LabelBall   = "ball"
)

// Frame is one observation of one tracked entity at one video frame.
// FrameIndex is the primary time key; TimeS is derived from it by the
// tracker (frame_index / fps).
type Frame struct {
	FrameIndex int     `json:"frame_index"`
	TimeS      float64 `json:"time_s"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
}

// Track is one continuous (or merged) identity. Frames are ordered by
// non-decreasing TimeS. TeamColor and JerseyNumber are empty until the
// team classifier / jersey reader collaborators fill them in; empty means
// unknown everywhere downstream.
type Track struct {
	TrackID      string
	Label        string
	Frames       []Frame
	TeamColor    string
	JerseyNumber string
}

// First returns the earliest frame of the track.
func (t Track) First() Frame {
	return t.Frames[0]
}

// Last returns the latest frame of the track.
func (t Track) Last() Frame {
	return t.Frames[len(t.Frames)-1]
}

// FrameIndex maps a frame index to its observation, built once per track so
// "who is where at frame N" lookups are O(1) instead of a scan per query.
type FrameIndex map[int]Frame

// ByFrame builds the frame index for a track. If a frame index appears more
// than once (only possible transiently around a merge) the first observation
// wins.
func (t Track) ByFrame() FrameIndex {
	idx := make(FrameIndex, len(t.Frames))
	for _, f := range t.Frames {
		if _, ok := idx[f.FrameIndex]; !ok {
			idx[f.FrameIndex] = f
		}
	}
	return idx
}

// WithTeamColor returns a copy of the track with the team color set.
func (t Track) WithTeamColor(color string) Track {
	t.TeamColor = color
	return t
}

// WithJerseyNumber returns a copy of the track with the jersey number set.
func (t Track) WithJerseyNumber(number string) Track {
	t.JerseyNumber = number
	return t
}

// TrackingResult is the immutable snapshot every detector consumes. Stages
// that decorate tracks return a new TrackingResult instead of mutating in
// place.
type TrackingResult struct {
	PlayerTracks []Track
	BallTracks   []Track
}

// PrimaryBallTrack returns the ball track with the most frames. The tracker
// frequently fragments the ball into several short tracks; the longest one
// is what the detectors scan.
func (r TrackingResult) PrimaryBallTrack() (Track, bool) {
	best := -1
	for i, t := range r.BallTracks {
		if best == -1 || len(t.Frames) > len(r.BallTracks[best].Frames) {
			best = i
		}
	}
	if best == -1 || len(r.BallTracks[best].Frames) == 0 {
		return Track{}, false
	}
	return r.BallTracks[best], true
}

// Dist returns the Euclidean pixel distance between two observations.
func Dist(a, b Frame) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
