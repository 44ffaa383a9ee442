package analysis

import (
	"testing"

	"github.com/nkmwicz/soccer-video-analysis/pkg/track"
)

func ballResult(frames []track.Frame) track.TrackingResult {
	return track.TrackingResult{BallTracks: []track.Track{{TrackID: "ball", Label: track.LabelBall, Frames: frames}}}
}

// secondFrames places one frame per second at the given x positions.
func secondFrames(xs []float64) []track.Frame {
	frames := make([]track.Frame, 0, len(xs))
	for i, x := range xs {
		frames = append(frames, track.Frame{FrameIndex: i, TimeS: float64(i), X: x, Y: 0})
	}
	return frames
}

func TestSegmentGamePhasesKickoffAtSpikeFrame(t *testing.T) {
	// Dwell through frame 4, then a speed spike: the kickoff moment is the
	// frame where the speed threshold is crossed, not the dwell start.
	var frames []track.Frame
	for i, x := range []float64{100, 100, 100, 100, 100, 103, 130, 160, 190, 220} {
		frames = append(frames, tf(i, x, 0))
	}

	segments := SegmentGamePhases(ballResult(frames), DefaultPhaseConfig())

	if len(segments) != 1 {
		t.Fatalf("expected a single kickoff marker, got %d: %+v", len(segments), segments)
	}
	kick := segments[0]
	if kick.Phase != PhaseFirstHalf || kick.Period != 1 {
		t.Errorf("unexpected marker: %+v", kick)
	}
	if kick.StartFrame != 5 || kick.EndFrame != 5 {
		t.Errorf("expected the spike frame 5, got [%d, %d]", kick.StartFrame, kick.EndFrame)
	}
	if kick.StartTimeS != 0.5 {
		t.Errorf("expected kickoff at 0.5s, got %v", kick.StartTimeS)
	}
}

func TestSegmentGamePhasesNoKickoffMeansNoPhases(t *testing.T) {
	var still []float64
	for i := 0; i < 40; i++ {
		still = append(still, 100)
	}
	if got := SegmentGamePhases(ballResult(secondFrames(still)), DefaultPhaseConfig()); len(got) != 0 {
		t.Errorf("a never-moving ball must yield no phases, got %+v", got)
	}

	if got := SegmentGamePhases(track.TrackingResult{}, DefaultPhaseConfig()); len(got) != 0 {
		t.Errorf("no ball track must yield no phases, got %+v", got)
	}
}

func TestSegmentGamePhasesFullMatch(t *testing.T) {
	cfg := PhaseConfig{
		DwellWindow:          3,
		MaxDriftPx:           10.0,
		SpeedThresholdPxS:    80.0,
		ActivityWindow:       3,
		ActivityThresholdPx:  50.0,
		MinHalftimeDurationS: 5.0,
	}

	// Dwell 0-2, kickoff spike at 3, play 3-9, quiet 10-19, resumed activity
	// from 20, second dwell 21-23, second spike at 24.
	xs := []float64{
		0, 0, 0,
		200, 260, 200, 260, 200, 260, 200,
		500, 500, 500, 500, 500, 500, 500, 500, 500, 500,
		600, 600, 600, 600, 800, 800,
	}

	segments := SegmentGamePhases(ballResult(secondFrames(xs)), cfg)

	if len(segments) != 3 {
		t.Fatalf("expected first half, halftime and second half, got %d: %+v", len(segments), segments)
	}

	firstHalf, halftime, secondHalf := segments[0], segments[1], segments[2]

	if firstHalf.Phase != PhaseFirstHalf || firstHalf.Period != 1 {
		t.Errorf("unexpected first segment: %+v", firstHalf)
	}
	if firstHalf.StartFrame != 2 {
		t.Errorf("expected kickoff at frame 2, got %d", firstHalf.StartFrame)
	}
	if halftime.Phase != PhaseHalftime || halftime.Period != 1 {
		t.Errorf("unexpected halftime segment: %+v", halftime)
	}
	if halftime.StartFrame != 10 || halftime.EndFrame != 18 {
		t.Errorf("expected halftime [10, 18], got [%d, %d]", halftime.StartFrame, halftime.EndFrame)
	}
	if secondHalf.Phase != PhaseSecondHalf || secondHalf.Period != 2 {
		t.Errorf("unexpected second-half segment: %+v", secondHalf)
	}
	if secondHalf.StartFrame != 23 || secondHalf.EndFrame != 23 {
		t.Errorf("expected second kickoff marker at 23, got [%d, %d]", secondHalf.StartFrame, secondHalf.EndFrame)
	}

	// Boundaries must be ordered: kickoff, halftime start, halftime end,
	// second kickoff.
	if !(firstHalf.StartTimeS < halftime.StartTimeS && halftime.StartTimeS < halftime.EndTimeS && halftime.EndTimeS <= secondHalf.StartTimeS) {
		t.Errorf("phase boundaries out of order: %+v", segments)
	}
}

func TestSegmentGamePhasesSecondHalfFallback(t *testing.T) {
	cfg := PhaseConfig{
		DwellWindow:          3,
		MaxDriftPx:           10.0,
		SpeedThresholdPxS:    80.0,
		ActivityWindow:       3,
		ActivityThresholdPx:  50.0,
		MinHalftimeDurationS: 5.0,
	}

	// Same shape as the full match but activity resumes without a second
	// dwell-and-spike, so the second half falls back to the remaining span.
	xs := []float64{
		0, 0, 0,
		200, 260, 200, 260, 200, 260, 200,
		500, 500, 500, 500, 500, 500, 500, 500, 500, 500,
		600,
	}

	segments := SegmentGamePhases(ballResult(secondFrames(xs)), cfg)

	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d: %+v", len(segments), segments)
	}
	secondHalf := segments[2]
	if secondHalf.Phase != PhaseSecondHalf || secondHalf.Period != 2 {
		t.Errorf("unexpected second-half segment: %+v", secondHalf)
	}
	if secondHalf.StartFrame != 18 || secondHalf.EndFrame != 20 {
		t.Errorf("expected fallback span [18, 20], got [%d, %d]", secondHalf.StartFrame, secondHalf.EndFrame)
	}
}

func TestDetectHalftimeSkipsShortQuietGaps(t *testing.T) {
	cfg := PhaseConfig{
		DwellWindow:          3,
		MaxDriftPx:           10.0,
		SpeedThresholdPxS:    80.0,
		ActivityWindow:       3,
		ActivityThresholdPx:  50.0,
		MinHalftimeDurationS: 5.0,
	}

	// Quiet for only 2s before activity resumes: in-play noise, not halftime.
	xs := []float64{
		200, 260, 200, 260,
		500, 500, 500, 500, 500,
		600, 660, 600, 660,
	}

	if _, _, ok := detectHalftime(secondFrames(xs), cfg, 0); ok {
		t.Error("a quiet gap shorter than the minimum duration must not count as halftime")
	}
}
