package query

import (
	"bufio"
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/linmem"
)

// ErrMalformedLog is wrapped by every error returned from Parse
var ErrMalformedLog = errors.New("malformed request log")

type tokenReader struct {
	scanner *bufio.Scanner
	read    int
}

func (r *tokenReader) next(what string) (int, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return 0, errors.Wrapf(err, "reading %s", what)
		}
		return 0, errors.Wrapf(ErrMalformedLog, "unexpected end of input reading %s", what)
	}
	r.read++

	value, err := strconv.Atoi(r.scanner.Text())
	if err != nil {
		return 0, errors.Wrapf(ErrMalformedLog, "token %d (%s) is not an integer: %q", r.read, what, r.scanner.Text())
	}
	return value, nil
}

// Parse reads whitespace-separated integers: the memory size, the number of queries, and then
// one value per query. A positive value v requests v units. A negative value v frees the
// allocation made by query -v (1-based), i.e. FreeRequest{TargetIndex: -v-1}.
func Parse(r io.Reader) (Log, error) {
	tokens := &tokenReader{scanner: bufio.NewScanner(r)}
	tokens.scanner.Split(bufio.ScanWords)

	var log Log
	var err error

	log.MemorySize, err = tokens.next("memory size")
	if err != nil {
		return Log{}, err
	}
	if err = linmem.CheckPositive(log.MemorySize, "memory size"); err != nil {
		return Log{}, errors.Mark(err, ErrMalformedLog)
	}

	count, err := tokens.next("query count")
	if err != nil {
		return Log{}, err
	}
	if count < 0 {
		return Log{}, errors.Wrapf(ErrMalformedLog, "query count is %d", count)
	}

	log.Queries = make([]Query, 0, count)
	for i := 0; i < count; i++ {
		value, err := tokens.next("query " + strconv.Itoa(i))
		if err != nil {
			return Log{}, err
		}

		q, err := queryFromValue(i, value)
		if err != nil {
			return Log{}, err
		}
		log.Queries = append(log.Queries, q)
	}

	return log, nil
}

func queryFromValue(index, value int) (Query, error) {
	switch {
	case value > 0:
		return AllocationRequest{Size: value}, nil
	case value < 0:
		target := -value - 1
		if target >= index {
			return nil, errors.Wrapf(ErrMalformedLog, "query %d frees query %d, which has not run yet", index, target)
		}
		return FreeRequest{TargetIndex: target}, nil
	default:
		return nil, errors.Wrapf(ErrMalformedLog, "query %d is zero", index)
	}
}
