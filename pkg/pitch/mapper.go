package pitch

import (
	"github.com/nkmwicz/soccer-video-analysis/pkg/track"
)

// DefaultSampleInterval is the homography refresh rate in frames.
const DefaultSampleInterval = 30

// Homography is a 3x3 projective transform from pixel space to pitch space.
type Homography [3][3]float64

// Apply transforms one pixel point to pitch coordinates. A degenerate
// transform (zero denominator) returns the input unchanged.
func (h Homography) Apply(x, y float64) (float64, float64) {
	w := h[2][0]*x + h[2][1]*y + h[2][2]
	if w == 0 {
		return x, y
	}
	tx := (h[0][0]*x + h[0][1]*y + h[0][2]) / w
	ty := (h[1][0]*x + h[1][1]*y + h[1][2]) / w
	return tx, ty
}

// Estimator produces a homography for a single video frame, or an error when
// estimation fails for that frame. Estimation itself (field-line detection,
// corner fitting) is an external collaborator concern.
type Estimator interface {
	EstimateHomography(frameIndex int) (*Homography, error)
}

// Point is a 2D position, pixel or pitch space depending on context.
type Point struct {
	X float64
	Y float64
}

// Mapper converts pixel coordinates to pitch coordinates through cached,
// periodically refreshed homographies. Frame indices are bucketed to
// multiples of the sample interval; each bucket invokes the estimator at
// most once and caches success or failure alike. A Mapper is owned by one
// video's processing run and must not be shared across videos.
type Mapper struct {
	estimator      Estimator
	sampleInterval int
	cache          map[int]*Homography // nil value = cached estimation failure
}

func NewMapper(estimator Estimator, sampleInterval int) *Mapper {
	if sampleInterval <= 0 {
		sampleInterval = DefaultSampleInterval
	}
	return &Mapper{
		estimator:      estimator,
		sampleInterval: sampleInterval,
		cache:          make(map[int]*Homography),
	}
}

func (m *Mapper) homographyFor(frameIndex int) *Homography {
	key := (frameIndex / m.sampleInterval) * m.sampleInterval
	if h, ok := m.cache[key]; ok {
		return h
	}
	h, err := m.estimator.EstimateHomography(key)
	if err != nil {
		h = nil
	}
	m.cache[key] = h
	return h
}

// TransformPoint maps one pixel point at a frame to pitch coordinates. When
// no homography is available for the frame's bucket, the pixel coordinates
// pass through unchanged and ok is false; callers should treat the result as
// lower-confidence.
func (m *Mapper) TransformPoint(x, y float64, frameIndex int) (float64, float64, bool) {
	h := m.homographyFor(frameIndex)
	if h == nil {
		return x, y, false
	}
	tx, ty := h.Apply(x, y)
	return tx, ty, true
}

// TransformTrack maps every observation of a track to pitch space, falling
// back to pixel coordinates frame by frame where no homography is available.
func (m *Mapper) TransformTrack(t track.Track) []Point {
	points := make([]Point, 0, len(t.Frames))
	for _, f := range t.Frames {
		x, y, _ := m.TransformPoint(f.X, f.Y, f.FrameIndex)
		points = append(points, Point{X: x, Y: y})
	}
	return points
}
