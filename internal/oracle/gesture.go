package oracle

// Gesture is the logical outcome of a drag release.
type Gesture int

// Gesture outcomes. GestureNone means the card springs back to center.
const (
	GestureNone Gesture = iota
	GestureReject
	GestureConnect
)

// Default thresholds for drag classification.
const (
	DefaultDistanceThreshold = 120.0 // px
	DefaultVelocityThreshold = 800.0 // px/s
)

// Classifier translates a horizontal drag release into a gesture.
// Both a distance test and a velocity test are applied, either may trigger:
// distance alone misreads fast flicks, velocity alone misreads slow
// deliberate drags. Thresholds are symmetric for left and right.
type Classifier struct {
	Distance float64 // minimum release offset, px
	Velocity float64 // minimum release velocity, px/s
}

// DefaultClassifier returns a classifier with the default thresholds.
func DefaultClassifier() Classifier {
	return Classifier{Distance: DefaultDistanceThreshold, Velocity: DefaultVelocityThreshold}
}

// Classify maps a release offset and velocity (positive = rightward) to a
// gesture: right past either threshold connects, left past either rejects,
// anything else is a spring-back.
func (c Classifier) Classify(offset, velocity float64) Gesture {
	switch {
	case offset >= c.Distance || velocity >= c.Velocity:
		return GestureConnect
	case offset <= -c.Distance || velocity <= -c.Velocity:
		return GestureReject
	default:
		return GestureNone
	}
}
