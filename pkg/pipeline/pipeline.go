package pipeline

import (
	"os"
	"path"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/nkmwicz/soccer-video-analysis/pkg/analysis"
	"github.com/nkmwicz/soccer-video-analysis/pkg/collab"
	"github.com/nkmwicz/soccer-video-analysis/pkg/events"
	"github.com/nkmwicz/soccer-video-analysis/pkg/pitch"
	"github.com/nkmwicz/soccer-video-analysis/pkg/utils"
)

// videoExtensions are the container formats the pipeline picks up from the
// videos directory.
var videoExtensions = []string{".mp4", ".mov", ".mkv", ".avi"}

// Run processes every video in the configured videos directory that does not
// already have an output CSV in the data directory. Videos are independent;
// a failing video is logged and skipped, not fatal for the batch.
func Run() error {
	videosDir := viper.GetString("directory.videos")
	names, err := utils.ListDir(videosDir)
	if err != nil {
		return err
	}

	for _, name := range names {
		ext := strings.ToLower(path.Ext(name))
		if !utils.InSlice(ext, videoExtensions) {
			continue
		}

		gameID := strings.TrimSuffix(name, path.Ext(name))
		outputPath := path.Join(viper.GetString("directory.data"), gameID+".csv")
		if _, err := os.Stat(outputPath); err == nil {
			logrus.WithField("game", gameID).Info("output exists, skipping")
			continue
		}

		if err := ProcessVideo(path.Join(videosDir, name)); err != nil {
			logrus.WithField("game", gameID).Errorf("Run: Error, got '%v'", err)
		}
	}

	return nil
}

// ProcessVideo runs the full chain for one video: tracking, team colors,
// jersey numbers, substitution linking, possession, phases, actions, pitch
// mapping, event build and CSV output. Stages are strictly sequential; each
// consumes the previous stage's snapshot.
func ProcessVideo(videoPath string) error {
	gameID := strings.TrimSuffix(path.Base(videoPath), path.Ext(videoPath))
	log := logrus.WithField("game", gameID)

	tracking, err := collab.RunTracker(videoPath)
	if err != nil {
		return err
	}

	tracking, err = collab.AssignTeamColors(videoPath, tracking)
	if err != nil {
		return err
	}
	tracking, err = collab.AssignJerseyNumbers(videoPath, tracking)
	if err != nil {
		return err
	}

	tracking = analysis.LinkSubstitutions(tracking, substitutionConfig())

	possessions := analysis.InferPossessions(tracking, possessionConfig())
	phases := analysis.SegmentGamePhases(tracking, phaseConfig())

	dims := pitch.SelectDimensions(viper.GetInt("pitch.players_on_field"))
	candidates := analysis.RecognizeActions(tracking, dims.LengthM, actionConfig())
	log.WithFields(logrus.Fields{
		"possessions": len(possessions),
		"phases":      len(phases),
		"candidates":  len(candidates),
	}).Info("detectors complete")

	estimator := collab.NewFieldHomographyEstimator(videoPath, dims, viper.GetString("pitch.line_color"))
	mapper := pitch.NewMapper(estimator, viper.GetInt("pitch.sample_interval"))

	evs := events.BuildActionEvents(gameID, candidates, tracking, mapper, possessions, phases, teamNames())

	outputPath := path.Join(viper.GetString("directory.data"), gameID+".csv")
	if err := events.WriteEventsCSV(outputPath, evs); err != nil {
		return err
	}
	log.WithField("events", len(evs)).Infof("wrote '%s'", outputPath)

	if viper.GetBool("video.annotate") {
		annotatedPath := path.Join(viper.GetString("directory.data"), gameID+".avi")
		if err := collab.AnnotateVideo(videoPath, annotatedPath, tracking, evs); err != nil {
			log.Errorf("ProcessVideo: Error annotating, got '%v'", err)
		}
	}

	return nil
}

// teamNames returns the configured team color -> display name map with
// lower-cased color keys.
func teamNames() map[string]string {
	names := make(map[string]string)
	for color, name := range viper.GetStringMapString("teams.names") {
		names[strings.ToLower(color)] = name
	}
	return names
}

// The detector configs start from their tuned defaults; any viper key that
// is set overrides the matching threshold so they can be recalibrated per
// camera setup.

func substitutionConfig() analysis.SubstitutionConfig {
	cfg := analysis.DefaultSubstitutionConfig()
	if v := viper.GetFloat64("analysis.substitution.max_time_gap_s"); v > 0 {
		cfg.MaxTimeGapS = v
	}
	if v := viper.GetFloat64("analysis.substitution.max_position_dist_px"); v > 0 {
		cfg.MaxPositionDistPx = v
	}
	return cfg
}

func possessionConfig() analysis.PossessionConfig {
	cfg := analysis.DefaultPossessionConfig()
	if v := viper.GetFloat64("analysis.possession.max_ball_distance_px"); v > 0 {
		cfg.MaxBallDistancePx = v
	}
	if v := viper.GetFloat64("analysis.possession.min_segment_duration_s"); v > 0 {
		cfg.MinSegmentDurationS = v
	}
	return cfg
}

func phaseConfig() analysis.PhaseConfig {
	cfg := analysis.DefaultPhaseConfig()
	if v := viper.GetInt("analysis.phase.dwell_window"); v > 0 {
		cfg.DwellWindow = v
	}
	if v := viper.GetFloat64("analysis.phase.max_drift_px"); v > 0 {
		cfg.MaxDriftPx = v
	}
	if v := viper.GetFloat64("analysis.phase.speed_threshold_px_s"); v > 0 {
		cfg.SpeedThresholdPxS = v
	}
	if v := viper.GetInt("analysis.phase.activity_window"); v > 0 {
		cfg.ActivityWindow = v
	}
	if v := viper.GetFloat64("analysis.phase.activity_threshold_px"); v > 0 {
		cfg.ActivityThresholdPx = v
	}
	if v := viper.GetFloat64("analysis.phase.min_halftime_duration_s"); v > 0 {
		cfg.MinHalftimeDurationS = v
	}
	return cfg
}

func actionConfig() analysis.ActionConfig {
	cfg := analysis.DefaultActionConfig()
	if v := viper.GetFloat64("analysis.actions.pass_near_dist_px"); v > 0 {
		cfg.PassNearDistPx = v
	}
	if v := viper.GetInt("analysis.actions.pass_lookahead_frames"); v > 0 {
		cfg.PassLookaheadFrames = v
	}
	if v := viper.GetFloat64("analysis.actions.pass_min_travel_px"); v > 0 {
		cfg.PassMinTravelPx = v
	}
	if v := viper.GetFloat64("analysis.actions.pass_receive_dist_px"); v > 0 {
		cfg.PassReceiveDistPx = v
	}
	if v := viper.GetFloat64("analysis.actions.shot_speed_px_s"); v > 0 {
		cfg.ShotSpeedPxS = v
	}
	if v := viper.GetFloat64("analysis.actions.shot_shooter_dist_px"); v > 0 {
		cfg.ShotShooterDistPx = v
	}
	if v := viper.GetFloat64("analysis.actions.dribble_near_dist_px"); v > 0 {
		cfg.DribbleNearDistPx = v
	}
	if v := viper.GetInt("analysis.actions.dribble_min_frames"); v > 0 {
		cfg.DribbleMinFrames = v
	}
	if v := viper.GetFloat64("analysis.actions.dribble_min_travel_px"); v > 0 {
		cfg.DribbleMinTravelPx = v
	}
	if v := viper.GetFloat64("analysis.actions.challenge_dist_px"); v > 0 {
		cfg.ChallengeDistPx = v
	}
	if v := viper.GetFloat64("analysis.actions.intercept_dist_px"); v > 0 {
		cfg.InterceptDistPx = v
	}
	if v := viper.GetFloat64("analysis.actions.intercept_owner_dist_px"); v > 0 {
		cfg.InterceptOwnerDistPx = v
	}
	if v := viper.GetInt("analysis.actions.intercept_lookback"); v > 0 {
		cfg.InterceptLookback = v
	}
	return cfg
}
