package acorn

// Kind is the closed set of descriptor variants.
type Kind int

const (
	// KindService descriptors are built by calling their constructor with
	// resolved dependencies.
	KindService Kind = iota

	// KindProducer descriptors are built by invoking a producer method on the
	// instance of their owning service.
	KindProducer
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindService:
		return "service"
	case KindProducer:
		return "producer"
	default:
		return "unknown"
	}
}

// Marker classifies a descriptor, the way an annotation would. The container
// can filter its registry by marker.
type Marker string

const (
	// ServiceMarker is the default marker of service descriptors.
	ServiceMarker Marker = "service"

	// ProducerMarker is the default marker of producer descriptors.
	ProducerMarker Marker = "producer"
)
