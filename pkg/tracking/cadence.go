package tracking

// Cadence decides which frames run landmark detection
type Cadence interface {
	ShouldDetect(frame uint64) bool
}

// EveryNth detects on frames 0, N, 2N, ...
type EveryNth uint64

// ShouldDetect implements Cadence
func (n EveryNth) ShouldDetect(frame uint64) bool {
	if n <= 1 {
		return true
	}
	return frame%uint64(n) == 0
}

// Always detects on every frame
var Always Cadence = EveryNth(1)

// CadenceFunc adapts a function to Cadence
type CadenceFunc func(frame uint64) bool

// ShouldDetect implements Cadence
func (f CadenceFunc) ShouldDetect(frame uint64) bool {
	return f(frame)
}
