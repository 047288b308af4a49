package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested object does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// Parameter Errors.

	// ErrMissingParameter indicates a required parameter key is absent.
	ErrMissingParameter = errors.New("missing parameter")

	// Tree Errors.

	// ErrInvalidObjectType indicates a save candidate is typed as something other than a tree.
	ErrInvalidObjectType = errors.New("this method only saves KBaseTrees.Tree objects")

	// ErrMissingTreeField indicates a save candidate has no newick tree string.
	ErrMissingTreeField = errors.New("missing 'tree' attribute containing newick tree")

	// ErrInvalidNewick indicates a tree string failed newick validation.
	ErrInvalidNewick = errors.New("invalid newick tree")

	// ErrNotATree indicates a referenced object is not a tree.
	ErrNotATree = errors.New("supplied reference is not a Tree")
)

// MissingParameterError names the required keys absent from a parameter set.
// Index is the position of the offending element for nested parameter sets,
// or -1 for top-level parameters.
type MissingParameterError struct {
	Keys  []string
	Index int
}

func (e *MissingParameterError) Error() string {
	msg := fmt.Sprintf("required keys %s not in supplied parameters", strings.Join(e.Keys, ", "))
	if e.Index >= 0 {
		return fmt.Sprintf("object %d: %s", e.Index, msg)
	}
	return msg
}

// Is reports whether target is ErrMissingParameter.
func (e *MissingParameterError) Is(target error) bool {
	return target == ErrMissingParameter
}

// MissingTreeFieldError reports the index of a save candidate without a tree string.
type MissingTreeFieldError struct {
	Index int
}

func (e *MissingTreeFieldError) Error() string {
	return fmt.Sprintf("object %d %s", e.Index, ErrMissingTreeField)
}

// Is reports whether target is ErrMissingTreeField.
func (e *MissingTreeFieldError) Is(target error) bool {
	return target == ErrMissingTreeField
}

// InvalidNewickError reports a save candidate whose tree string was rejected.
type InvalidNewickError struct {
	Index int
	Tree  string

	// Cause is the validator's description of the problem, if any.
	Cause error
}

func (e *InvalidNewickError) Error() string {
	return fmt.Sprintf("object %d has an %s: %s", e.Index, ErrInvalidNewick, e.Tree)
}

// Is reports whether target is ErrInvalidNewick.
func (e *InvalidNewickError) Is(target error) bool {
	return target == ErrInvalidNewick
}

// Unwrap returns the validator error.
func (e *InvalidNewickError) Unwrap() error {
	return e.Cause
}

// IsValidationError reports whether err was raised by input validation
// rather than by storage or a remote collaborator.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingParameter) ||
		errors.Is(err, ErrInvalidObjectType) ||
		errors.Is(err, ErrMissingTreeField) ||
		errors.Is(err, ErrInvalidNewick) ||
		errors.Is(err, ErrNotATree) ||
		errors.Is(err, ErrInvalidInput)
}
