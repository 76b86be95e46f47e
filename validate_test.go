package linmem_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/linmem"
)

type validateFunc func() error

func (f validateFunc) Validate() error { return f() }

func TestDebugValidate(t *testing.T) {
	calls := 0
	broken := validateFunc(func() error {
		calls++
		return errors.New("broken")
	})

	if linmem.DebugEnabled {
		require.Panics(t, func() { linmem.DebugValidate(broken) })
		require.Equal(t, 1, calls)
	} else {
		require.NotPanics(t, func() { linmem.DebugValidate(broken) })
		require.Equal(t, 0, calls)
	}
}
