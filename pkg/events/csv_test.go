package events

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestWriteEventsCSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "data", "game1.csv")

	evs := []Event{
		{
			GameID: "game1", EventID: "abcd1234", Period: 1, Phase: "first_half",
			PossessionID: "pos-001", TeamColor: "red", TeamName: "Home",
			PlayerNumber: "10", PlayerTrackID: "p1", BallTrackID: "ball",
			Action: "pass", Subaction: "accurate",
			StartFrame: 100, EndFrame: 110, StartTimeS: 10.0, EndTimeS: 11.04,
			StartX: 50.1234, StartY: 60, EndX: 70, EndY: 80, Confidence: 0.7,
		},
		{
			GameID: "game1", EventID: "ef567890", Action: "shoot", Subaction: "goal",
			PlayerTrackID: "p2", BallTrackID: "ball", Confidence: 0.6,
		},
	}

	if err := WriteEventsCSV(out, evs); err != nil {
		t.Fatalf("WriteEventsCSV: %v", err)
	}

	file, err := os.Open(out)
	if err != nil {
		t.Fatalf("opening output: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if !reflect.DeepEqual(rows[0], CSVColumns) {
		t.Errorf("unexpected header: %v", rows[0])
	}

	first := rows[1]
	if first[2] != "1" {
		t.Errorf("expected period 1, got %q", first[2])
	}
	if first[15] != "11.040" || first[16] != "50.123" {
		t.Errorf("expected 3-decimal rounding, got %q, %q", first[15], first[16])
	}
	if first[20] != "0.700" {
		t.Errorf("expected confidence 0.700, got %q", first[20])
	}

	second := rows[2]
	if second[2] != "" {
		t.Errorf("an unresolved period must be empty, got %q", second[2])
	}
	if second[14] != "0.000" {
		t.Errorf("expected zero time formatted, got %q", second[14])
	}
}

func TestWriteEventsCSVEmpty(t *testing.T) {
	out := filepath.Join(t.TempDir(), "empty.csv")

	if err := WriteEventsCSV(out, nil); err != nil {
		t.Fatalf("WriteEventsCSV: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	file, _ := os.Open(out)
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("parsing output: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected header only, got %d rows (%d bytes)", len(rows), len(data))
	}
}
