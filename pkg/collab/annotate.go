package collab

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/nkmwicz/soccer-video-analysis/pkg/events"
	"github.com/nkmwicz/soccer-video-analysis/pkg/track"
)

var ballBoxColor = color.RGBA{255, 128, 0, 0}
var unknownTeamColor = color.RGBA{200, 200, 200, 0}
var labelTextColor = color.RGBA{255, 255, 255, 0}

// teamBoxColors maps the classifier's color names to plot colors.
var teamBoxColors = map[string]color.RGBA{
	"red":    {255, 0, 0, 0},
	"blue":   {0, 0, 255, 0},
	"white":  {255, 255, 255, 0},
	"black":  {40, 40, 40, 0},
	"yellow": {255, 255, 102, 0},
	"orange": {255, 165, 0, 0},
	"green":  {0, 255, 0, 0},
	"cyan":   {0, 255, 255, 0},
	"purple": {160, 32, 240, 0},
}

type frameBox struct {
	rect  image.Rectangle
	color color.RGBA
	label string
}

// AnnotateVideo renders the tracking result and detected events onto a copy
// of the video (XVID '.avi'). Player boxes are colored by team, the ball gets
// its own color, and each event's action label is drawn near the ball for
// the event's frame span. Intended for reviewing detector output, not for
// production export.
func AnnotateVideo(videoPath, outputPath string, tracking track.TrackingResult, evs []events.Event) error {
	cap, err := gocv.VideoCaptureFile(videoPath)
	if err != nil {
		return fmt.Errorf("AnnotateVideo: Error, Got '%v'", err)
	}
	defer cap.Close()

	writer, err := gocv.VideoWriterFile(outputPath, "XVID", cap.Get(gocv.VideoCaptureFPS),
		int(cap.Get(gocv.VideoCaptureFrameWidth)), int(cap.Get(gocv.VideoCaptureFrameHeight)), true)
	if err != nil {
		return fmt.Errorf("AnnotateVideo: Error, Got '%v'", err)
	}
	defer writer.Close()

	boxes := collectBoxes(tracking)
	labels := collectEventLabels(evs)

	frame := gocv.NewMat()
	defer frame.Close()

	for frameIndex := 0; cap.Read(&frame); frameIndex++ {
		for _, b := range boxes[frameIndex] {
			gocv.Rectangle(&frame, b.rect, b.color, 3)
			if b.label != "" {
				gocv.PutText(&frame, b.label, image.Pt(b.rect.Min.X, b.rect.Min.Y-5), gocv.FontHersheyPlain, 1, labelTextColor, 2)
			}
		}
		for _, l := range labels[frameIndex] {
			gocv.PutText(&frame, l.text, l.at, gocv.FontHersheyPlain, 2, labelTextColor, 2)
		}
		writer.Write(frame)
	}

	return nil
}

func collectBoxes(tracking track.TrackingResult) map[int][]frameBox {
	boxes := make(map[int][]frameBox)

	for _, t := range tracking.PlayerTracks {
		boxColor, ok := teamBoxColors[t.TeamColor]
		if !ok {
			boxColor = unknownTeamColor
		}
		label := fmt.Sprintf("ID: %s", t.TrackID)
		if t.JerseyNumber != "" {
			label = fmt.Sprintf("#%s", t.JerseyNumber)
		}
		for _, f := range t.Frames {
			boxes[f.FrameIndex] = append(boxes[f.FrameIndex], frameBox{
				rect:  image.Rect(int(f.X1), int(f.Y1), int(f.X2), int(f.Y2)),
				color: boxColor,
				label: label,
			})
		}
	}

	for _, t := range tracking.BallTracks {
		for _, f := range t.Frames {
			boxes[f.FrameIndex] = append(boxes[f.FrameIndex], frameBox{
				rect:  image.Rect(int(f.X1), int(f.Y1), int(f.X2), int(f.Y2)),
				color: ballBoxColor,
			})
		}
	}

	return boxes
}

type eventLabel struct {
	text string
	at   image.Point
}

func collectEventLabels(evs []events.Event) map[int][]eventLabel {
	labels := make(map[int][]eventLabel)
	for _, e := range evs {
		text := e.Action
		if e.Subaction != "" {
			text = fmt.Sprintf("%s (%s)", e.Action, e.Subaction)
		}
		for frame := e.StartFrame; frame <= e.EndFrame; frame++ {
			labels[frame] = append(labels[frame], eventLabel{text: text, at: image.Pt(30, 40)})
		}
	}
	return labels
}
