package collab

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/nkmwicz/soccer-video-analysis/pkg/track"
)

// observation is one detection line on the tracker backend's standard
// output.
type observation struct {
	TrackID    string  `json:"track_id"`
	Label      string  `json:"label"`
	FrameIndex int     `json:"frame_index"`
	TimeS      float64 `json:"time_s"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
}

// RunTracker executes the YOLO + ByteTrack python backend for one video and
// assembles its stdout stream into a TrackingResult. The backend prints one
// JSON observation per line, time-ordered per track, and an "EOF" line when
// the video is exhausted. Tracks come back in first-appearance order so
// downstream tie-breaks stay deterministic. A missing backend is a fatal,
// named error; it is a required capability, not a degradable one.
func RunTracker(videoPath string) (track.TrackingResult, error) {
	script := viper.GetString("tracker.script")
	if script == "" {
		return track.TrackingResult{}, fmt.Errorf("RunTracker: tracking backend unavailable: 'tracker.script' is not configured")
	}

	cmd := exec.Command("python3", script, "--video", videoPath)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return track.TrackingResult{}, fmt.Errorf("RunTracker: Error, got '%v'", err)
	}
	defer stdout.Close()

	if err := cmd.Start(); err != nil {
		return track.TrackingResult{}, fmt.Errorf("RunTracker: tracking backend unavailable, got '%v'", err)
	}

	playerFrames := make(map[string][]track.Frame)
	ballFrames := make(map[string][]track.Frame)
	var playerOrder, ballOrder []string

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "EOF" {
			break
		}
		if !strings.HasPrefix(line, "{") { // backend log print, skip it
			continue
		}

		var obs observation
		if err := json.Unmarshal(scanner.Bytes(), &obs); err != nil {
			logrus.WithField("video", videoPath).Warnf("RunTracker: Error, got '%v'", err)
			continue
		}

		frame := track.Frame{
			FrameIndex: obs.FrameIndex,
			TimeS:      obs.TimeS,
			X:          obs.X,
			Y:          obs.Y,
			X1:         obs.X1,
			Y1:         obs.Y1,
			X2:         obs.X2,
			Y2:         obs.Y2,
		}
		switch obs.Label {
		case track.LabelPlayer:
			if _, ok := playerFrames[obs.TrackID]; !ok {
				playerOrder = append(playerOrder, obs.TrackID)
			}
			playerFrames[obs.TrackID] = append(playerFrames[obs.TrackID], frame)
		case track.LabelBall:
			if _, ok := ballFrames[obs.TrackID]; !ok {
				ballOrder = append(ballOrder, obs.TrackID)
			}
			ballFrames[obs.TrackID] = append(ballFrames[obs.TrackID], frame)
		}
	}

	if err := cmd.Wait(); err != nil {
		return track.TrackingResult{}, fmt.Errorf("RunTracker: Error waiting python's process, Got '%v'", err)
	}

	result := track.TrackingResult{}
	for _, id := range playerOrder {
		result.PlayerTracks = append(result.PlayerTracks, track.Track{
			TrackID: id,
			Label:   track.LabelPlayer,
			Frames:  playerFrames[id],
		})
	}
	for _, id := range ballOrder {
		result.BallTracks = append(result.BallTracks, track.Track{
			TrackID: id,
			Label:   track.LabelBall,
			Frames:  ballFrames[id],
		})
	}

	logrus.WithFields(logrus.Fields{
		"video":   videoPath,
		"players": len(result.PlayerTracks),
		"balls":   len(result.BallTracks),
	}).Info("tracking complete")

	return result, nil
}
