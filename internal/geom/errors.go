package geom

import (
	"fmt"
	"strings"
)

// ParseError reports malformed syntax in the declared format.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %v", e.Format, e.Format.Label(), e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnsupportedFormatError is returned when a file extension or format tag is
// not in the enabled set.
type UnsupportedFormatError struct {
	Format    string
	Supported []Format
}

func (e *UnsupportedFormatError) Error() string {
	names := make([]string, len(e.Supported))
	for i, f := range e.Supported {
		names[i] = string(f)
	}
	shown := e.Format
	if shown == "" {
		shown = "(none)"
	}
	return fmt.Sprintf("format %s not supported; supported formats: %s", shown, strings.Join(names, ", "))
}

// MissingGeometryError is returned when an archive has no .shp entry.
type MissingGeometryError struct {
	Archive string
}

func (e *MissingGeometryError) Error() string {
	if e.Archive != "" {
		return "no .shp file found in archive " + e.Archive
	}
	return "no .shp file found in archive"
}

// EmptyResultError means decoding succeeded but no valid feature survived.
type EmptyResultError struct {
	Format Format
}

func (e *EmptyResultError) Error() string {
	if e.Format == "" {
		return "no valid data found"
	}
	return fmt.Sprintf("no valid data found in %s", e.Format.Label())
}

// shapefileError prefixes every failure of the shapefile assembler.
func shapefileError(err error) error {
	return fmt.Errorf("unable to process the file as shapefile/archive: %w", err)
}
