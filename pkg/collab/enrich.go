package collab

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/nkmwicz/soccer-video-analysis/pkg/track"
)

// samplesPerTrack is how many frames of each track are handed to the
// backends for color clustering / OCR.
const samplesPerTrack = 5

// decoration is one backend answer line: a per-track attribute.
type decoration struct {
	TrackID string `json:"track_id"`
	Value   string `json:"value"`
}

// AssignTeamColors runs the jersey-color clustering backend and returns a
// new TrackingResult with TeamColor set on the player tracks it could
// classify. Tracks the backend says nothing about keep an empty color and
// are treated as unknown team downstream.
func AssignTeamColors(videoPath string, tracking track.TrackingResult) (track.TrackingResult, error) {
	if len(tracking.PlayerTracks) == 0 {
		return tracking, nil
	}
	colors, err := runDecorator("teams.script", videoPath, tracking)
	if err != nil {
		return tracking, err
	}

	updated := make([]track.Track, 0, len(tracking.PlayerTracks))
	for _, t := range tracking.PlayerTracks {
		updated = append(updated, t.WithTeamColor(colors[t.TrackID]))
	}
	return track.TrackingResult{PlayerTracks: updated, BallTracks: tracking.BallTracks}, nil
}

// AssignJerseyNumbers runs the OCR backend and returns a new TrackingResult
// with JerseyNumber set where the backend read one.
func AssignJerseyNumbers(videoPath string, tracking track.TrackingResult) (track.TrackingResult, error) {
	if len(tracking.PlayerTracks) == 0 {
		return tracking, nil
	}
	numbers, err := runDecorator("jersey.script", videoPath, tracking)
	if err != nil {
		return tracking, err
	}

	updated := make([]track.Track, 0, len(tracking.PlayerTracks))
	for _, t := range tracking.PlayerTracks {
		updated = append(updated, t.WithJerseyNumber(numbers[t.TrackID]))
	}
	return track.TrackingResult{PlayerTracks: updated, BallTracks: tracking.BallTracks}, nil
}

// runDecorator executes a python backend that reads sampled bounding boxes
// on stdin ("track_id;frame_index;x1;y1;x2;y2", one per line) and answers
// with one JSON line per track it could decorate, then "EOF". A missing
// backend is a fatal, named error.
func runDecorator(scriptKey, videoPath string, tracking track.TrackingResult) (map[string]string, error) {
	script := viper.GetString(scriptKey)
	if script == "" {
		return nil, fmt.Errorf("runDecorator: backend unavailable: '%s' is not configured", scriptKey)
	}

	cmd := exec.Command("python3", script, "--video", videoPath)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("runDecorator: Error getting python's standard input, got '%v'", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("runDecorator: Error getting python's standard output, got '%v'", err)
	}
	defer stdout.Close()

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("runDecorator: backend unavailable ('%s'), got '%v'", script, err)
	}

	writeSamples(stdin, tracking.PlayerTracks)
	stdin.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "EOF" {
			break
		}
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var d decoration
		if err := json.Unmarshal(scanner.Bytes(), &d); err != nil {
			logrus.Warnf("runDecorator: Error, got '%v'", err)
			continue
		}
		if d.Value != "" {
			values[d.TrackID] = d.Value
		}
	}

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("runDecorator: Error waiting python's process, Got '%v'", err)
	}

	return values, nil
}

// writeSamples spreads samplesPerTrack evenly over each track's frames, the
// sampling the backends expect.
func writeSamples(w io.Writer, players []track.Track) {
	for _, t := range players {
		if len(t.Frames) == 0 {
			continue
		}
		step := len(t.Frames) / samplesPerTrack
		if step < 1 {
			step = 1
		}
		written := 0
		for i := 0; i < len(t.Frames) && written < samplesPerTrack; i += step {
			f := t.Frames[i]
			fmt.Fprintf(w, "%s;%d;%.1f;%.1f;%.1f;%.1f\n", t.TrackID, f.FrameIndex, f.X1, f.Y1, f.X2, f.Y2)
			written++
		}
	}
}
