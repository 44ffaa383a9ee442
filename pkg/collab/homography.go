package collab

import (
	"errors"
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"github.com/nkmwicz/soccer-video-analysis/pkg/pitch"
)

// FieldHomographyEstimator estimates a pixel-to-pitch homography for a
// sampled frame by detecting field lines (Canny + probabilistic Hough),
// fitting the field's corner quad and solving the perspective transform to
// the real-world pitch rectangle. It implements pitch.Estimator; caching is
// the Mapper's job, each call here does the full detection.
type FieldHomographyEstimator struct {
	videoPath string
	dims      pitch.Dimensions
	lineColor string // preferred line color ("white", "yellow"); empty keeps all lines
}

func NewFieldHomographyEstimator(videoPath string, dims pitch.Dimensions, lineColor string) *FieldHomographyEstimator {
	return &FieldHomographyEstimator{videoPath: videoPath, dims: dims, lineColor: lineColor}
}

// EstimateHomography grabs the given frame from the video and fits the
// transform. Any failure (unreadable frame, too few lines) is an error the
// Mapper caches as a miss for that bucket.
func (e *FieldHomographyEstimator) EstimateHomography(frameIndex int) (*pitch.Homography, error) {
	cap, err := gocv.VideoCaptureFile(e.videoPath)
	if err != nil {
		return nil, fmt.Errorf("EstimateHomography: Error opening '%s', got '%v'", e.videoPath, err)
	}
	defer cap.Close()

	cap.Set(gocv.VideoCapturePosFrames, float64(frameIndex))

	frame := gocv.NewMat()
	defer frame.Close()
	if !cap.Read(&frame) || frame.Empty() {
		return nil, fmt.Errorf("EstimateHomography: Could not read frame %d of '%s'", frameIndex, e.videoPath)
	}

	corners, err := e.fieldCorners(frame)
	if err != nil {
		return nil, err
	}

	dst := []image.Point{
		image.Pt(0, 0),
		image.Pt(int(e.dims.LengthM), 0),
		image.Pt(int(e.dims.LengthM), int(e.dims.WidthM)),
		image.Pt(0, int(e.dims.WidthM)),
	}

	srcVec := gocv.NewPointVectorFromPoints(corners)
	defer srcVec.Close()
	dstVec := gocv.NewPointVectorFromPoints(dst)
	defer dstVec.Close()

	transform := gocv.GetPerspectiveTransform(srcVec, dstVec)
	defer transform.Close()

	var h pitch.Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			h[r][c] = transform.GetDoubleAt(r, c)
		}
	}
	return &h, nil
}

// fieldCorners detects line segments and takes the first four convex-hull
// points of their endpoints as the field corner quad. Falls back to the
// frame corners when the hull degenerates, matching the conservative
// behavior of using an unmapped wide shot.
func (e *FieldHomographyEstimator) fieldCorners(frame gocv.Mat) ([]image.Point, error) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, 50, 150)

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(edges, &lines, 1, float32(math.Pi/180), 50, 50, 10)

	if lines.Rows() < 4 {
		return nil, errors.New("EstimateHomography: Not enough field lines detected")
	}

	endpoints := make([]image.Point, 0, lines.Rows()*2)
	for i := 0; i < lines.Rows(); i++ {
		seg := lines.GetVeciAt(i, 0)
		p1 := image.Pt(int(seg[0]), int(seg[1]))
		p2 := image.Pt(int(seg[2]), int(seg[3]))
		if e.lineColor != "" && !e.segmentMatchesColor(frame, p1, p2) {
			continue
		}
		endpoints = append(endpoints, p1, p2)
	}
	if len(endpoints) < 4 {
		return nil, errors.New("EstimateHomography: Not enough field lines after color filter")
	}

	endpointsVec := gocv.NewPointVectorFromPoints(endpoints)
	defer endpointsVec.Close()

	hull := gocv.NewMat()
	defer hull.Close()
	gocv.ConvexHull(endpointsVec, &hull, true, true)

	if hull.Rows() < 4 {
		w, h := frame.Cols(), frame.Rows()
		return []image.Point{image.Pt(0, 0), image.Pt(w, 0), image.Pt(w, h), image.Pt(0, h)}, nil
	}

	corners := make([]image.Point, 0, 4)
	for i := 0; i < 4; i++ {
		pt := hull.GetVeciAt(i, 0)
		corners = append(corners, image.Pt(int(pt[0]), int(pt[1])))
	}
	return corners, nil
}

// segmentMatchesColor samples the segment's bounding region and checks its
// mean HSV against the preferred line color.
func (e *FieldHomographyEstimator) segmentMatchesColor(frame gocv.Mat, p1, p2 image.Point) bool {
	rect := image.Rect(p1.X, p1.Y, p2.X, p2.Y).Canon().Intersect(image.Rect(0, 0, frame.Cols(), frame.Rows()))
	if rect.Dx() < 1 || rect.Dy() < 1 {
		return false
	}

	region := frame.Region(rect)
	defer region.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(region, &hsv, gocv.ColorBGRToHSV)

	mean := hsv.Mean()
	h, s, v := mean.Val1, mean.Val2, mean.Val3

	switch e.lineColor {
	case "white":
		return s < 30 && v > 180
	case "yellow":
		return h >= 25 && h < 35 && s > 100 && v > 100
	case "green":
		return h >= 35 && h < 85 && s > 100
	}
	return true
}
