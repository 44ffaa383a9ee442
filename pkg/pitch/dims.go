package pitch

// Dimensions are real-world pitch sizes in meters.
type Dimensions struct {
	LengthM float64
	WidthM  float64
}

// Conservative "standard" sizes used as defaults. These vary by league;
// override in config if the league publishes exact dimensions.
var (
	Pitch9v9   = Dimensions{LengthM: 70.0, WidthM: 45.0}
	Pitch11v11 = Dimensions{LengthM: 100.0, WidthM: 64.0}
)

// SelectDimensions picks a pitch size from the total player count on the
// field. Zero or negative means unknown and falls back to a full-size pitch.
func SelectDimensions(playersOnField int) Dimensions {
	if playersOnField <= 0 {
		return Pitch11v11
	}
	if playersOnField <= 18 {
		return Pitch9v9
	}
	return Pitch11v11
}
