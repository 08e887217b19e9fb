package testutil

import "math"

// Close reports whether |got-want| <= rtol*|want|, numpy's assert_allclose
// with atol=0. Scenario assertions use it outside of a testing.T.
func Close(want, got, rtol float64) bool {
	return math.Abs(got-want) <= rtol*math.Abs(want)
}
