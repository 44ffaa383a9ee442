package analysis

import (
	"reflect"
	"testing"

	"github.com/nkmwicz/soccer-video-analysis/pkg/track"
)

func TestLinkSubstitutionsMergesAdjacentFragments(t *testing.T) {
	tracking := track.TrackingResult{
		PlayerTracks: []track.Track{
			{
				TrackID: "a", Label: track.LabelPlayer, TeamColor: "red", JerseyNumber: "10",
				Frames: []track.Frame{
					{FrameIndex: 990, TimeS: 99.0, X: 48, Y: 48},
					{FrameIndex: 1000, TimeS: 100.0, X: 50, Y: 50},
				},
			},
			{
				TrackID: "b", Label: track.LabelPlayer, TeamColor: "red", JerseyNumber: "10",
				Frames: []track.Frame{
					{FrameIndex: 1020, TimeS: 102.0, X: 55, Y: 52},
					{FrameIndex: 1030, TimeS: 103.0, X: 60, Y: 60},
				},
			},
		},
	}

	linked := LinkSubstitutions(tracking, DefaultSubstitutionConfig())

	if len(linked.PlayerTracks) != 1 {
		t.Fatalf("expected 1 merged track, got %d", len(linked.PlayerTracks))
	}
	merged := linked.PlayerTracks[0]
	if merged.TrackID != "a" {
		t.Errorf("expected the earlier identity to survive, got %s", merged.TrackID)
	}
	if merged.JerseyNumber != "10" {
		t.Errorf("expected jersey 10 retained, got %q", merged.JerseyNumber)
	}
	if len(merged.Frames) != 4 {
		t.Fatalf("expected 4 frames after merge, got %d", len(merged.Frames))
	}
	for i := 1; i < len(merged.Frames); i++ {
		if merged.Frames[i].TimeS < merged.Frames[i-1].TimeS {
			t.Fatalf("merged frames out of order at %d", i)
		}
	}

	// Linking an already-linked result must change nothing.
	again := LinkSubstitutions(linked, DefaultSubstitutionConfig())
	if !reflect.DeepEqual(linked, again) {
		t.Error("linking is not idempotent")
	}
}

func TestLinkSubstitutionsChainsTransitively(t *testing.T) {
	fragment := func(id string, startT float64) track.Track {
		return track.Track{
			TrackID: id, Label: track.LabelPlayer, JerseyNumber: "9",
			Frames: []track.Frame{
				{FrameIndex: int(startT * 10), TimeS: startT, X: 10, Y: 10},
				{FrameIndex: int(startT*10) + 80, TimeS: startT + 8, X: 12, Y: 12},
			},
		}
	}
	tracking := track.TrackingResult{
		PlayerTracks: []track.Track{
			fragment("a", 0),
			fragment("b", 10), // starts 2s after a ends
			fragment("c", 20), // starts 2s after b ends
		},
	}

	linked := LinkSubstitutions(tracking, DefaultSubstitutionConfig())

	if len(linked.PlayerTracks) != 1 {
		t.Fatalf("expected the chain to collapse into 1 track, got %d", len(linked.PlayerTracks))
	}
	if linked.PlayerTracks[0].TrackID != "a" {
		t.Errorf("expected chain root a, got %s", linked.PlayerTracks[0].TrackID)
	}
	if len(linked.PlayerTracks[0].Frames) != 6 {
		t.Errorf("expected all 6 frames in the root, got %d", len(linked.PlayerTracks[0].Frames))
	}
}

func TestLinkSubstitutionsRejectsBadCandidates(t *testing.T) {
	base := track.Track{
		TrackID: "a", Label: track.LabelPlayer, JerseyNumber: "4",
		Frames: []track.Frame{{FrameIndex: 1000, TimeS: 100.0, X: 50, Y: 50}},
	}

	cases := []struct {
		name  string
		other track.Track
	}{
		{
			name: "gap too large",
			other: track.Track{
				TrackID: "b", Label: track.LabelPlayer, JerseyNumber: "4",
				Frames: []track.Frame{{FrameIndex: 1100, TimeS: 110.0, X: 50, Y: 50}},
			},
		},
		{
			name: "too far away",
			other: track.Track{
				TrackID: "b", Label: track.LabelPlayer, JerseyNumber: "4",
				Frames: []track.Frame{{FrameIndex: 1020, TimeS: 102.0, X: 500, Y: 500}},
			},
		},
		{
			name: "overlapping in time",
			other: track.Track{
				TrackID: "b", Label: track.LabelPlayer, JerseyNumber: "4",
				Frames: []track.Frame{{FrameIndex: 990, TimeS: 99.0, X: 50, Y: 50}},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tracking := track.TrackingResult{PlayerTracks: []track.Track{base, tc.other}}
			linked := LinkSubstitutions(tracking, DefaultSubstitutionConfig())
			if len(linked.PlayerTracks) != 2 {
				t.Errorf("expected no merge, got %d tracks", len(linked.PlayerTracks))
			}
		})
	}
}

func TestLinkSubstitutionsIgnoresMissingJerseys(t *testing.T) {
	tracking := track.TrackingResult{
		PlayerTracks: []track.Track{
			{TrackID: "a", Label: track.LabelPlayer, Frames: []track.Frame{{FrameIndex: 1000, TimeS: 100.0, X: 50, Y: 50}}},
			{TrackID: "b", Label: track.LabelPlayer, Frames: []track.Frame{{FrameIndex: 1020, TimeS: 102.0, X: 52, Y: 52}}},
		},
	}

	linked := LinkSubstitutions(tracking, DefaultSubstitutionConfig())
	if len(linked.PlayerTracks) != 2 {
		t.Errorf("tracks without a jersey must never link, got %d tracks", len(linked.PlayerTracks))
	}
}
