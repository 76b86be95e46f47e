//go:build debug_linmem

package linmem

// DebugEnabled reports whether the package was built with the debug_linmem build tag
const DebugEnabled bool = true

// DebugValidate will call Validate on the provided object and panics if any errors are returned. This
// method no-ops unless the debug_linmem build tag is present
func DebugValidate(validatable Validatable) {
	err := validatable.Validate()
	if err != nil {
		panic(err)
	}
}
