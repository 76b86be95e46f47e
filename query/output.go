package query

import (
	"bufio"
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
)

// FailureMarker is written in place of an offset for a failed allocation
const FailureMarker = "-1"

// WriteResponses writes one line per response: the offset, or FailureMarker
func WriteResponses(w io.Writer, responses []Response) error {
	out := bufio.NewWriter(w)

	for _, response := range responses {
		line := FailureMarker
		if response.Success {
			line = strconv.Itoa(response.Offset)
		}

		if _, err := out.WriteString(line); err != nil {
			return errors.Wrap(err, "writing responses")
		}
		if err := out.WriteByte('\n'); err != nil {
			return errors.Wrap(err, "writing responses")
		}
	}

	return errors.Wrap(out.Flush(), "writing responses")
}
