package assembler

import (
	"errors"
	"fmt"

	"github.com/dtnitsch/doc-leveler/models"
)

var (
	ErrMismatchedSectionCount = errors.New("mismatched section count")
	ErrMisalignedSection      = errors.New("misaligned section")
	ErrEmptySection           = errors.New("empty section")
)

// MismatchedSectionCountError reports variant sequences of different lengths.
type MismatchedSectionCountError struct {
	Beginner     int
	Intermediate int
	Advanced     int
}

func (e *MismatchedSectionCountError) Error() string {
	return fmt.Sprintf("%s: beginner=%d intermediate=%d advanced=%d",
		ErrMismatchedSectionCount, e.Beginner, e.Intermediate, e.Advanced)
}

func (e *MismatchedSectionCountError) Is(target error) bool {
	return target == ErrMismatchedSectionCount
}

// MisalignedSectionError reports a variant whose i-th section does not carry
// the same id and title as the beginner variant.
type MisalignedSectionError struct {
	Index int
	Level models.Level
	Want  string
	Got   string
}

func (e *MisalignedSectionError) Error() string {
	return fmt.Sprintf("%s at index %d (%s): want %q, got %q",
		ErrMisalignedSection, e.Index, e.Level, e.Want, e.Got)
}

func (e *MisalignedSectionError) Is(target error) bool {
	return target == ErrMisalignedSection
}

// EmptySectionError reports a variant section with no content blocks.
type EmptySectionError struct {
	Index int
	Level models.Level
	ID    string
}

func (e *EmptySectionError) Error() string {
	return fmt.Sprintf("%s at index %d (%s): section %q has no content",
		ErrEmptySection, e.Index, e.Level, e.ID)
}

func (e *EmptySectionError) Is(target error) bool {
	return target == ErrEmptySection
}
