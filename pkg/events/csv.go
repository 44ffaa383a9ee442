package events

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// CSVColumns is the fixed output record layout, one row per event.
var CSVColumns = []string{
	"game_id",
	"event_id",
	"period",
	"phase",
	"possession_id",
	"team_color",
	"team_name",
	"player_number",
	"player_track_id",
	"ball_owner_track_id",
	"action",
	"subaction",
	"start_frame",
	"end_frame",
	"start_time_s",
	"end_time_s",
	"start_x",
	"start_y",
	"end_x",
	"end_y",
	"confidence",
}

// WriteEventsCSV persists an ordered sequence of events to outputPath,
// creating parent directories as needed. Times, coordinates and confidence
// are rounded to 3 decimals; an unresolved period is written empty.
func WriteEventsCSV(outputPath string, events []Event) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0766); err != nil {
		return fmt.Errorf("WriteEventsCSV: Error creating output directory, got '%v'", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("WriteEventsCSV: Error creating '%s', got '%v'", outputPath, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(CSVColumns); err != nil {
		return fmt.Errorf("WriteEventsCSV: Error writing header, got '%v'", err)
	}

	for _, e := range events {
		period := ""
		if e.Period != 0 {
			period = strconv.Itoa(e.Period)
		}
		row := []string{
			e.GameID,
			e.EventID,
			period,
			e.Phase,
			e.PossessionID,
			e.TeamColor,
			e.TeamName,
			e.PlayerNumber,
			e.PlayerTrackID,
			e.BallTrackID,
			e.Action,
			e.Subaction,
			strconv.Itoa(e.StartFrame),
			strconv.Itoa(e.EndFrame),
			fmt.Sprintf("%.3f", e.StartTimeS),
			fmt.Sprintf("%.3f", e.EndTimeS),
			fmt.Sprintf("%.3f", e.StartX),
			fmt.Sprintf("%.3f", e.StartY),
			fmt.Sprintf("%.3f", e.EndX),
			fmt.Sprintf("%.3f", e.EndY),
			fmt.Sprintf("%.3f", e.Confidence),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("WriteEventsCSV: Error writing event %s, got '%v'", e.EventID, err)
		}
	}

	w.Flush()
	return w.Error()
}
