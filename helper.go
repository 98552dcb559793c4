// Copyright 2024 Mavflow. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dialect

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	// MaxMessageSize is the largest extended payload a MAVLink frame can
	// carry. The limit is enforced by the framer; the compiler only warns
	// when a message definition exceeds it.
	MaxMessageSize = 300
)

// Errors
var (

	// ErrNullIdentifier is returned when a required name attribute is missing
	// or empty.
	ErrNullIdentifier = errors.New("missing required name")

	// ErrNotAnInteger is returned when an attribute that must hold an integer
	// cannot be parsed as one: a signed 64-bit enum value, an unsigned 32-bit
	// message id or an array length.
	ErrNotAnInteger = errors.New("value is not an integer")

	// ErrMissingFileIdentity is returned when a definition has neither a
	// file attribute on its root element nor a caller-supplied name.
	ErrMissingFileIdentity = errors.New(
		"definition has no file attribute and no caller-supplied name")

	// ErrMissingInclude is returned when an include references a definition
	// file that was not provided as an input.
	ErrMissingInclude = errors.New("included definition file was not provided")

	// ErrUnknownType is returned when a field declares a base type absent
	// from the primitive type registry.
	ErrUnknownType = errors.New("unknown MAVLink field type")

	// ErrMergeConflict is the sentinel matched by every MergeConflictError.
	ErrMergeConflict = errors.New("dialect merge conflict")

	// ErrArrayOverflow is returned at encode time when a supplied array value
	// is longer than the declared field length.
	ErrArrayOverflow = errors.New("array value exceeds declared field length")

	// ErrUnknownEnumEntry is returned at encode time when a symbolic value
	// does not resolve through the dialect enum tables.
	ErrUnknownEnumEntry = errors.New("unknown enum entry name")

	// ErrShortPayload is returned at decode time when the payload is smaller
	// than the message payload size.
	ErrShortPayload = errors.New("payload smaller than message payload size")

	// ErrBadFieldValue is returned at encode time when a value cannot be
	// converted to the field wire type.
	ErrBadFieldValue = errors.New("value cannot be converted to the field type")
)

func errValue(typ string, v interface{}) error {
	return fmt.Errorf("%w: %T into %s", ErrBadFieldValue, v, typ)
}

// normalizeKey turns a symbolic MAVLink name into its lookup key: lowercase,
// with underscores replaced by dashes. Base-type names are never normalized.
func normalizeKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "_", "-")
}

// stringInSlice checks whether a string exists in a slice of strings.
func stringInSlice(a string, list []string) bool {
	for _, b := range list {
		if b == a {
			return true
		}
	}
	return false
}

func getAbsoluteFilePath(testfile string) string {
	_, p, _, _ := runtime.Caller(0)
	return path.Join(filepath.Dir(p), testfile)
}
