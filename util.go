package linmem

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// CheckPositive returns an error wrapping ErrInvalidSize if number is less than 1
func CheckPositive[T constraints.Integer](number T, name string) error {
	if number < 1 {
		return errors.Wrapf(ErrInvalidSize, "%s is %d", name, number)
	}
	return nil
}
