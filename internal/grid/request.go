package grid

const secondsPerDegree = 3600.0

// Shift carries one geographic point through a forward or reverse datum
// shift. The caller sets the input coordinate, passes the value to
// File.ShiftForward or File.ShiftReverse, and reads the computed shift back
// out of the same value.
//
// Coordinates and shifts are stored in arc-seconds with longitude positive
// west, matching the NTv2 format. Degree accessors use the conventional
// positive-east orientation.
type Shift struct {
	lonSeconds float64 // positive west
	latSeconds float64

	lonShiftSeconds float64 // positive west
	latShiftSeconds float64

	lonAccuracySeconds float64
	latAccuracySeconds float64
	lonAccuracyOK      bool
	latAccuracyOK      bool

	subGridName string
}

// SetLatSeconds sets the input latitude in arc-seconds.
func (s *Shift) SetLatSeconds(v float64) { s.latSeconds = v }

// SetLatDegrees sets the input latitude in decimal degrees.
func (s *Shift) SetLatDegrees(v float64) { s.latSeconds = v * secondsPerDegree }

// SetLonPositiveWestSeconds sets the input longitude in positive-west
// arc-seconds.
func (s *Shift) SetLonPositiveWestSeconds(v float64) { s.lonSeconds = v }

// SetLonPositiveEastDegrees sets the input longitude in the conventional
// positive-east decimal degrees.
func (s *Shift) SetLonPositiveEastDegrees(v float64) { s.lonSeconds = -v * secondsPerDegree }

// LatSeconds returns the input latitude in arc-seconds.
func (s *Shift) LatSeconds() float64 { return s.latSeconds }

// LatDegrees returns the input latitude in decimal degrees.
func (s *Shift) LatDegrees() float64 { return s.latSeconds / secondsPerDegree }

// LonPositiveWestSeconds returns the input longitude in positive-west
// arc-seconds.
func (s *Shift) LonPositiveWestSeconds() float64 { return s.lonSeconds }

// LonPositiveEastDegrees returns the input longitude in positive-east
// decimal degrees.
func (s *Shift) LonPositiveEastDegrees() float64 { return -s.lonSeconds / secondsPerDegree }

// LatShiftSeconds returns the computed latitude shift in arc-seconds.
func (s *Shift) LatShiftSeconds() float64 { return s.latShiftSeconds }

// LatShiftDegrees returns the computed latitude shift in decimal degrees.
func (s *Shift) LatShiftDegrees() float64 { return s.latShiftSeconds / secondsPerDegree }

// LonShiftPositiveWestSeconds returns the computed longitude shift in
// positive-west arc-seconds.
func (s *Shift) LonShiftPositiveWestSeconds() float64 { return s.lonShiftSeconds }

// LonShiftPositiveEastDegrees returns the computed longitude shift in
// positive-east decimal degrees.
func (s *Shift) LonShiftPositiveEastDegrees() float64 { return -s.lonShiftSeconds / secondsPerDegree }

// ShiftedLatSeconds returns the displaced latitude in arc-seconds.
func (s *Shift) ShiftedLatSeconds() float64 { return s.latSeconds + s.latShiftSeconds }

// ShiftedLatDegrees returns the displaced latitude in decimal degrees.
func (s *Shift) ShiftedLatDegrees() float64 { return s.ShiftedLatSeconds() / secondsPerDegree }

// ShiftedLonPositiveWestSeconds returns the displaced longitude in
// positive-west arc-seconds.
func (s *Shift) ShiftedLonPositiveWestSeconds() float64 { return s.lonSeconds + s.lonShiftSeconds }

// ShiftedLonPositiveEastDegrees returns the displaced longitude in
// positive-east decimal degrees.
func (s *Shift) ShiftedLonPositiveEastDegrees() float64 {
	return -s.ShiftedLonPositiveWestSeconds() / secondsPerDegree
}

// LatAccuracyAvailable reports whether the file carried latitude accuracy
// data and it was loaded.
func (s *Shift) LatAccuracyAvailable() bool { return s.latAccuracyOK }

// LonAccuracyAvailable reports whether the file carried longitude accuracy
// data and it was loaded.
func (s *Shift) LonAccuracyAvailable() bool { return s.lonAccuracyOK }

// LatAccuracySeconds returns the interpolated latitude accuracy in
// arc-seconds. Only meaningful when LatAccuracyAvailable is true.
func (s *Shift) LatAccuracySeconds() float64 { return s.latAccuracySeconds }

// LonAccuracySeconds returns the interpolated longitude accuracy in
// arc-seconds. Only meaningful when LonAccuracyAvailable is true.
func (s *Shift) LonAccuracySeconds() float64 { return s.lonAccuracySeconds }

// SubGridName returns the name of the subgrid that produced the last
// successful shift.
func (s *Shift) SubGridName() string { return s.subGridName }
