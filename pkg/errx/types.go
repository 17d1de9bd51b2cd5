package errx

// Type represents the category of error
type Type string

const (
	// TypeInternal represents internal server errors
	TypeInternal Type = "INTERNAL"

	// TypeValidation represents validation errors
	TypeValidation Type = "VALIDATION"

	// TypeAuthorization represents authorization/authentication errors
	TypeAuthorization Type = "AUTHORIZATION"

	// TypeNotFound represents resource not found errors
	TypeNotFound Type = "NOT_FOUND"

	// TypeConflict represents resource conflict errors
	TypeConflict Type = "CONFLICT"

	// TypeBusiness represents business logic errors
	TypeBusiness Type = "BUSINESS"

	// TypeExternal represents errors from external services
	TypeExternal Type = "EXTERNAL"

	// TypeDimensionMismatch represents a vector whose length disagrees
	// with the dimension established for its index or library
	TypeDimensionMismatch Type = "DIMENSION_MISMATCH"

	// TypeEmptyLibrary represents a search or build requested against a
	// library with zero chunks
	TypeEmptyLibrary Type = "EMPTY_LIBRARY"
)

// String returns the string representation of the error type
func (t Type) String() string {
	return string(t)
}
