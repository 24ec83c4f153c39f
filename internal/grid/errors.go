package grid

import (
	"errors"
	"fmt"
)

// ErrNotLoaded indicates a shift operation was invoked before a successful
// load, or after Unload. This is distinct from a coverage miss, which is a
// normal (false, nil) outcome.
var ErrNotLoaded = errors.New("ntv2: grid shift file not loaded")

// ErrBadMagic indicates the stream does not begin with the NUM_OREC record
// and therefore is not an NTv2 grid shift file.
type ErrBadMagic struct {
	Got string
}

func (e *ErrBadMagic) Error() string {
	return fmt.Sprintf("not an NTv2 grid shift file: first record tag %q, want %q", e.Got, magicTag)
}

// ErrEndianness indicates neither byte order decodes the overview record
// count field as 11, so the file's orientation cannot be resolved.
type ErrEndianness struct {
	BigValue    int32
	LittleValue int32
}

func (e *ErrEndianness) Error() string {
	return fmt.Sprintf("cannot detect byte order: overview record count is %d big-endian, %d little-endian, want 11",
		e.BigValue, e.LittleValue)
}

// ErrBadHeader indicates an overview or subgrid header field is missing,
// out of range, or inconsistent with the rest of the header.
type ErrBadHeader struct {
	Field  string
	Reason string
}

func (e *ErrBadHeader) Error() string {
	return fmt.Sprintf("invalid header field %s: %s", e.Field, e.Reason)
}

// ErrOrphanSubGrid indicates a subgrid names a parent that does not exist in
// the file. The reference format leaves this unspecified; it is rejected here
// rather than silently dropping the grid.
type ErrOrphanSubGrid struct {
	Name   string
	Parent string
}

func (e *ErrOrphanSubGrid) Error() string {
	return fmt.Sprintf("subgrid %q references missing parent %q", e.Name, e.Parent)
}

// ErrDuplicateSubGrid indicates two subgrids share a name, which makes
// parent linkage ambiguous.
type ErrDuplicateSubGrid struct {
	Name string
}

func (e *ErrDuplicateSubGrid) Error() string {
	return fmt.Sprintf("duplicate subgrid name %q", e.Name)
}
