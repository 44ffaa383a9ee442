package analysis

import (
	"sort"

	"github.com/nkmwicz/soccer-video-analysis/pkg/track"
)

// Action names.
const (
	ActionPass      = "pass"
	ActionShoot     = "shoot"
	ActionDribble   = "dribble"
	ActionChallenge = "challenge"
	ActionIntercept = "intercept"
)

// Detector confidences are fixed per action type, not tunable thresholds.
const (
	passConfidence      = 0.7
	shotConfidence      = 0.6
	dribbleConfidence   = 0.65
	challengeConfidence = 0.5
	interceptConfidence = 0.55
)

// ActionCandidate is a heuristically detected sporting event before
// enrichment with team/possession/phase context. Coordinates are still in
// pixel space; PlayerTrackID may be empty (unattributed shot).
type ActionCandidate struct {
	Action        string
	Subaction     string
	StartFrame    int
	EndFrame      int
	StartTimeS    float64
	EndTimeS      float64
	PlayerTrackID string
	BallTrackID   string
	StartX        float64
	StartY        float64
	EndX          float64
	EndY          float64
	Confidence    float64
}

// ActionConfig holds the pixel/time thresholds for the five detectors.
// They are empirical constants tuned to an unspecified camera scale; expose
// them in config so they can be recalibrated per setup.
type ActionConfig struct {
	PassNearDistPx     float64 // ball-to-passer distance at the pass origin
	PassLookaheadFrames int    // frames to look ahead for a receiver
	PassMinTravelPx    float64 // min ball travel for a pass to count
	PassReceiveDistPx  float64 // receiver-to-ball distance for an accurate pass

	ShotSpeedPxS      float64 // min ball speed for a shot
	ShotShooterDistPx float64 // max distance to attribute a shooter

	DribbleNearDistPx float64 // ball-to-dribbler distance per frame
	DribbleMinFrames  int     // min contiguous frames with the same nearest player
	DribbleMinTravelPx float64 // min net displacement over the run

	ChallengeDistPx float64 // ball-to-player distance for challenge involvement

	InterceptDistPx      float64 // ball-to-player distance at the intercept frame
	InterceptOwnerDistPx float64 // prior-possession distance for the attacker
	InterceptLookback    int     // frames of history to establish prior possession
}

func DefaultActionConfig() ActionConfig {
	return ActionConfig{
		PassNearDistPx:      50.0,
		PassLookaheadFrames: 90,
		PassMinTravelPx:     30.0,
		PassReceiveDistPx:   50.0,

		ShotSpeedPxS:      100.0,
		ShotShooterDistPx: 80.0,

		DribbleNearDistPx:  40.0,
		DribbleMinFrames:   5,
		DribbleMinTravelPx: 30.0,

		ChallengeDistPx: 60.0,

		InterceptDistPx:      50.0,
		InterceptOwnerDistPx: 40.0,
		InterceptLookback:    10,
	}
}

// RecognizeActions runs the five heuristic detectors over the primary ball
// track and returns their concatenated candidates sorted by start frame. The
// detectors are independent scans; no cross-detector deduplication is done,
// so one frame may yield e.g. both a dribble and a challenge. pitchLength is
// the pitch length used by the shot detector's goal-line bands.
func RecognizeActions(tracking track.TrackingResult, pitchLength float64, cfg ActionConfig) []ActionCandidate {
	actions := []ActionCandidate{}

	if len(tracking.BallTracks) == 0 || len(tracking.PlayerTracks) == 0 {
		return actions
	}
	ball, ok := tracking.PrimaryBallTrack()
	if !ok || len(ball.Frames) < 2 {
		return actions
	}

	players := indexPlayers(tracking.PlayerTracks)

	actions = append(actions, detectPasses(ball, players, cfg)...)
	actions = append(actions, detectShots(ball, players, pitchLength, cfg)...)
	actions = append(actions, detectDribbles(ball, players, cfg)...)
	actions = append(actions, detectChallenges(ball, players, cfg)...)
	actions = append(actions, detectIntercepts(ball, players, cfg)...)

	sort.SliceStable(actions, func(i, j int) bool { return actions[i].StartFrame < actions[j].StartFrame })
	return actions
}

// detectPasses: ball near player A, then near a same-team player B within
// the lookahead window after travelling at least PassMinTravelPx. The first
// qualifying future frame ends the pass.
func detectPasses(ball track.Track, players []indexedPlayer, cfg ActionConfig) []ActionCandidate {
	var passes []ActionCandidate
	frames := ball.Frames
	if len(frames) < 10 {
		return passes
	}

	for i := 0; i < len(frames)-1; i++ {
		origin := frames[i]
		passer := nearestPlayer(players, origin, cfg.PassNearDistPx)
		if passer == nil {
			continue
		}

		limit := i + cfg.PassLookaheadFrames
		if limit > len(frames) {
			limit = len(frames)
		}
		for j := i + 1; j < limit; j++ {
			future := frames[j]
			receiver := nearestPlayer(players, future, cfg.PassNearDistPx)
			if receiver == nil || receiver.track.TrackID == passer.track.TrackID {
				continue
			}
			if !sameTeam(passer, receiver) {
				continue
			}
			if track.Dist(origin, future) < cfg.PassMinTravelPx {
				continue
			}

			subaction := "inaccurate"
			if receiver.distTo(future) < cfg.PassReceiveDistPx {
				subaction = "accurate"
			}
			passes = append(passes, ActionCandidate{
				Action:        ActionPass,
				Subaction:     subaction,
				StartFrame:    origin.FrameIndex,
				EndFrame:      future.FrameIndex,
				StartTimeS:    origin.TimeS,
				EndTimeS:      future.TimeS,
				PlayerTrackID: passer.track.TrackID,
				BallTrackID:   ball.TrackID,
				StartX:        origin.X,
				StartY:        origin.Y,
				EndX:          future.X,
				EndY:          future.Y,
				Confidence:    passConfidence,
			})
			break
		}
	}

	return passes
}

// detectShots: high central-difference ball speed inside the goal-line bands
// of the pitch. The nearest player within ShotShooterDistPx, if any, is
// credited as the shooter.
func detectShots(ball track.Track, players []indexedPlayer, pitchLength float64, cfg ActionConfig) []ActionCandidate {
	var shots []ActionCandidate
	frames := ball.Frames
	if len(frames) < 5 {
		return shots
	}

	goalBand := pitchLength * 0.1

	for i := 1; i < len(frames)-1; i++ {
		curr := frames[i]
		next := frames[i+1]

		if centralSpeed(frames, i) < cfg.ShotSpeedPxS {
			continue
		}
		if curr.X > goalBand && curr.X < pitchLength-goalBand {
			continue
		}

		subaction := "inaccurate"
		if curr.X < pitchLength*0.05 || curr.X > pitchLength*0.95 {
			subaction = "goal"
		}

		shooterID := ""
		if shooter := nearestPlayer(players, curr, cfg.ShotShooterDistPx); shooter != nil {
			shooterID = shooter.track.TrackID
		}

		shots = append(shots, ActionCandidate{
			Action:        ActionShoot,
			Subaction:     subaction,
			StartFrame:    curr.FrameIndex,
			EndFrame:      next.FrameIndex,
			StartTimeS:    curr.TimeS,
			EndTimeS:      next.TimeS,
			PlayerTrackID: shooterID,
			BallTrackID:   ball.TrackID,
			StartX:        curr.X,
			StartY:        curr.Y,
			EndX:          next.X,
			EndY:          next.Y,
			Confidence:    shotConfidence,
		})
	}

	return shots
}

// detectDribbles: maximal contiguous run of ball frames where the same
// single player stays nearest, long and far-travelled enough to count.
func detectDribbles(ball track.Track, players []indexedPlayer, cfg ActionConfig) []ActionCandidate {
	var dribbles []ActionCandidate
	frames := ball.Frames
	if len(frames) < 5 {
		return dribbles
	}

	for i := 0; i < len(frames); {
		start := frames[i]
		player := nearestPlayer(players, start, cfg.DribbleNearDistPx)
		if player == nil {
			i++
			continue
		}

		j := i + 1
		for j < len(frames) {
			nearest := nearestPlayer(players, frames[j], cfg.DribbleNearDistPx)
			if nearest == nil || nearest.track.TrackID != player.track.TrackID {
				break
			}
			j++
		}

		if j-i >= cfg.DribbleMinFrames {
			end := frames[j-1]
			if track.Dist(start, end) > cfg.DribbleMinTravelPx {
				// A known jersey number is the identity-confidence proxy
				// for whether the dribbler kept the ball.
				subaction := "lose"
				if player.track.JerseyNumber != "" {
					subaction = "keep"
				}
				dribbles = append(dribbles, ActionCandidate{
					Action:        ActionDribble,
					Subaction:     subaction,
					StartFrame:    start.FrameIndex,
					EndFrame:      end.FrameIndex,
					StartTimeS:    start.TimeS,
					EndTimeS:      end.TimeS,
					PlayerTrackID: player.track.TrackID,
					BallTrackID:   ball.TrackID,
					StartX:        start.X,
					StartY:        start.Y,
					EndX:          end.X,
					EndY:          end.Y,
					Confidence:    dribbleConfidence,
				})
			}
		}

		if j > i+1 {
			i = j
		} else {
			i++
		}
	}

	return dribbles
}

// detectChallenges: a frame where players from two distinct, known teams are
// both within ChallengeDistPx of the ball. One candidate per qualifying
// frame. The subaction marks whether the first involved player (the earliest
// in track order) was closer to the ball than the opponent at that frame.
func detectChallenges(ball track.Track, players []indexedPlayer, cfg ActionConfig) []ActionCandidate {
	var challenges []ActionCandidate
	frames := ball.Frames
	if len(frames) < 3 {
		return challenges
	}

	for _, frame := range frames {
		nearby := nearbyPlayers(players, frame, cfg.ChallengeDistPx)
		if len(nearby) < 2 {
			continue
		}

		player1 := nearby[0]
		var player2 *indexedPlayer
		for _, p := range nearby[1:] {
			if differentTeam(player1, p) {
				player2 = p
				break
			}
		}
		if player2 == nil {
			continue
		}

		subaction := "lose"
		if player1.distTo(frame) <= player2.distTo(frame) {
			subaction = "win"
		}

		challenges = append(challenges, ActionCandidate{
			Action:        ActionChallenge,
			Subaction:     subaction,
			StartFrame:    frame.FrameIndex,
			EndFrame:      frame.FrameIndex,
			StartTimeS:    frame.TimeS,
			EndTimeS:      frame.TimeS,
			PlayerTrackID: player1.track.TrackID,
			BallTrackID:   ball.TrackID,
			StartX:        frame.X,
			StartY:        frame.Y,
			EndX:          frame.X,
			EndY:          frame.Y,
			Confidence:    challengeConfidence,
		})
	}

	return challenges
}

// detectIntercepts: two opposing players at the ball where the attacker (the
// first nearby player) held possession at least once in the preceding
// lookback frames. Credited to the defender.
func detectIntercepts(ball track.Track, players []indexedPlayer, cfg ActionConfig) []ActionCandidate {
	var intercepts []ActionCandidate
	frames := ball.Frames
	if len(frames) < 10 {
		return intercepts
	}

	for i := 5; i < len(frames)-5; i++ {
		frame := frames[i]
		nearby := nearbyPlayers(players, frame, cfg.InterceptDistPx)
		if len(nearby) < 2 {
			continue
		}

		attacker := nearby[0]
		var defender *indexedPlayer
		for _, p := range nearby[1:] {
			if differentTeam(attacker, p) {
				defender = p
				break
			}
		}
		if defender == nil {
			continue
		}

		lookbackFrom := i - cfg.InterceptLookback
		if lookbackFrom < 0 {
			lookbackFrom = 0
		}
		hadBall := false
		for _, prev := range frames[lookbackFrom:i] {
			if owner := nearestPlayer(players, prev, cfg.InterceptOwnerDistPx); owner != nil && owner.track.TrackID == attacker.track.TrackID {
				hadBall = true
				break
			}
		}
		if !hadBall {
			continue
		}

		intercepts = append(intercepts, ActionCandidate{
			Action:        ActionIntercept,
			Subaction:     "success",
			StartFrame:    frame.FrameIndex,
			EndFrame:      frame.FrameIndex,
			StartTimeS:    frame.TimeS,
			EndTimeS:      frame.TimeS,
			PlayerTrackID: defender.track.TrackID,
			BallTrackID:   ball.TrackID,
			StartX:        frame.X,
			StartY:        frame.Y,
			EndX:          frame.X,
			EndY:          frame.Y,
			Confidence:    interceptConfidence,
		})
	}

	return intercepts
}
