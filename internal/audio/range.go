package audio

import (
	"fmt"
	"regexp"
	"strconv"
)

// rangeSpec accepts the single-range form "bytes=start-end" with an optional
// end. Multi-range and suffix-range requests fall through to a full-body
// response rather than an error; players only ever send the simple form.
var rangeSpec = regexp.MustCompile(`bytes=(\d+)-(\d+)?`)

// RangeResult is the evaluated response plan for one audio request.
type RangeResult struct {
	// Status is 200, 206 or 416.
	Status int

	// Start and End are the inclusive byte offsets to serve. Meaningful
	// only for 200 and 206.
	Start int64
	End   int64

	// ContentRange is the Content-Range header value, set for 206 and 416.
	ContentRange string
}

// EvaluateRange plans the response for a Range header against a body of
// `size` bytes.
//
//   - No parseable range: 200, whole body.
//   - Start beyond the last byte, or start past the requested end: 416 with
//     "bytes */{size}".
//   - Otherwise: 206 with the end clamped to size-1; an omitted end means
//     "through the last byte".
func EvaluateRange(header string, size int64) RangeResult {
	m := rangeSpec.FindStringSubmatch(header)
	if m == nil {
		return RangeResult{Status: 200, Start: 0, End: size - 1}
	}

	unsatisfiable := RangeResult{
		Status:       416,
		ContentRange: fmt.Sprintf("bytes */%d", size),
	}

	start, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || start >= size {
		return unsatisfiable
	}

	end := size - 1
	if m[2] != "" {
		if e, err := strconv.ParseInt(m[2], 10, 64); err == nil && e < end {
			end = e
		}
	}
	// A reversed range ("bytes=500-400") is not satisfiable.
	if start > end {
		return unsatisfiable
	}

	return RangeResult{
		Status:       206,
		Start:        start,
		End:          end,
		ContentRange: fmt.Sprintf("bytes %d-%d/%d", start, end, size),
	}
}
