package units

// Conversion routes reported to a Recorder.
const (
	// RouteDimensional is a conversion between units of equal dimension.
	RouteDimensional = "dimensional"
	// RouteContext is a conversion bridged by context rules.
	RouteContext = "context"
	// RouteNone is a conversion that found no path.
	RouteNone = "none"
)

// Conversion outcomes reported to a Recorder.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder observes registry activity. Implementations must be safe for
// concurrent use.
//
//go:generate mockgen -source=recorder.go -destination=mocks/recorder_mock.go -package=mocks Recorder
type Recorder interface {
	// ObserveConversion is called once per conversion.
	ObserveConversion(route, outcome string)

	// ObserveContextEntered is called each time a context is pushed.
	ObserveContextEntered(context string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveConversion(string, string) {}
func (nopRecorder) ObserveContextEntered(string)     {}
