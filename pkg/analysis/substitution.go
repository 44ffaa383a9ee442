package analysis

import (
	"sort"

	"github.com/nkmwicz/soccer-video-analysis/pkg/track"
)

// SubstitutionConfig controls how aggressively track fragments are linked
// across a substitution or tracking dropout.
type SubstitutionConfig struct {
	MaxTimeGapS       float64 // max seconds between old track end and new track start
	MaxPositionDistPx float64 // max pixel distance between the two endpoints
}

func DefaultSubstitutionConfig() SubstitutionConfig {
	return SubstitutionConfig{
		MaxTimeGapS:       5.0,
		MaxPositionDistPx: 100.0,
	}
}

// LinkSubstitutions merges player tracks that represent the same physical
// athlete across a break. Tracks are grouped by jersey number (a missing
// jersey is never a matching key); within a group, chronologically adjacent
// pairs are linked when the new track starts within MaxTimeGapS and
// MaxPositionDistPx of where the old one ended. Links chain transitively:
// the earliest track absorbs every later fragment. Unlinked tracks pass
// through unchanged.
func LinkSubstitutions(tracking track.TrackingResult, cfg SubstitutionConfig) track.TrackingResult {
	if len(tracking.PlayerTracks) < 2 {
		return tracking
	}

	trackMap := make(map[string]track.Track, len(tracking.PlayerTracks))
	jerseyGroups := make(map[string][]string)
	for _, t := range tracking.PlayerTracks {
		trackMap[t.TrackID] = t
		if t.JerseyNumber == "" || len(t.Frames) == 0 {
			continue
		}
		jerseyGroups[t.JerseyNumber] = append(jerseyGroups[t.JerseyNumber], t.TrackID)
	}

	// parent[newID] points at the track that absorbs newID. Chains are
	// resolved to the root so a fragment's successor is merged into the
	// original identity, not the intermediate one.
	parent := make(map[string]string)
	resolve := func(id string) string {
		for {
			p, ok := parent[id]
			if !ok {
				return id
			}
			id = p
		}
	}

	for _, ids := range jerseyGroups {
		if len(ids) <= 1 {
			continue
		}
		sort.SliceStable(ids, func(i, j int) bool {
			return trackMap[ids[i]].First().TimeS < trackMap[ids[j]].First().TimeS
		})
		for i := 0; i < len(ids)-1; i++ {
			old := trackMap[ids[i]]
			next := trackMap[ids[i+1]]

			gap := next.First().TimeS - old.Last().TimeS
			if gap < 0 || gap > cfg.MaxTimeGapS {
				continue
			}
			if track.Dist(old.Last(), next.First()) > cfg.MaxPositionDistPx {
				continue
			}
			parent[next.TrackID] = resolve(old.TrackID)
		}
	}

	if len(parent) == 0 {
		return tracking
	}

	absorbed := make(map[string][]track.Track)
	for _, t := range tracking.PlayerTracks {
		if root, ok := parent[t.TrackID]; ok {
			absorbed[root] = append(absorbed[root], t)
		}
	}

	updated := make([]track.Track, 0, len(tracking.PlayerTracks))
	for _, t := range tracking.PlayerTracks {
		if _, merged := parent[t.TrackID]; merged {
			continue
		}
		if extras, ok := absorbed[t.TrackID]; ok {
			t = mergeTracks(t, extras)
		}
		updated = append(updated, t)
	}

	return track.TrackingResult{PlayerTracks: updated, BallTracks: tracking.BallTracks}
}

// mergeTracks concatenates the absorbed fragments onto the root track,
// re-sorts by time and keeps the first non-empty jersey number.
func mergeTracks(root track.Track, extras []track.Track) track.Track {
	frames := make([]track.Frame, 0, len(root.Frames))
	frames = append(frames, root.Frames...)
	jersey := root.JerseyNumber
	for _, e := range extras {
		frames = append(frames, e.Frames...)
		if jersey == "" {
			jersey = e.JerseyNumber
		}
	}
	sort.SliceStable(frames, func(i, j int) bool { return frames[i].TimeS < frames[j].TimeS })
	root.Frames = frames
	root.JerseyNumber = jersey
	return root
}
