// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package schema

import (
	"errors"
	"fmt"
)

// Sentinel reasons wrapped by SchemaInvalid. Compare with errors.Is.
var (
	// ErrDuplicateName is returned when two enums, two tables, two enum
	// members, or two fields of the same table share a name.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrUnresolvedRef is returned when a field names an enum or table
	// that does not exist. An unknown root is reported as ErrNoRootTable.
	ErrUnresolvedRef = errors.New("unresolved type reference")

	// ErrEnumValueRange is returned when an enum member's value does not
	// fit the enum's declared base type.
	ErrEnumValueRange = errors.New("enum value out of range for base type")

	// ErrVectorOfVector names the vector-of-vectors violation, which has no
	// direct wire representation. New never returns it: Field's
	// Cardinality cannot express a nested vector, and the parser rejects
	// a nested "[" with a ParseError.
	ErrVectorOfVector = errors.New("vector of vector is not a valid field type")

	// ErrNoRootTable is returned when the schema's root does not name a
	// known table.
	ErrNoRootTable = errors.New("root does not name a table")

	// ErrBadDefault is returned when a default value is supplied for a
	// vector field or for a field that is not an integer, float or enum.
	// The default's value is not checked against the field's type.
	ErrBadDefault = errors.New("default value is not valid for this field")
)

// SchemaInvalid wraps a validation failure with the entity name where it
// was found, matching spec.md's SchemaInvalid{reason}.
type SchemaInvalid struct {
	Entity string
	Reason error
}

func (e *SchemaInvalid) Error() string {
	return fmt.Sprintf("schema invalid: %s: %v", e.Entity, e.Reason)
}

func (e *SchemaInvalid) Unwrap() error {
	return e.Reason
}

func invalid(entity string, reason error) *SchemaInvalid {
	return &SchemaInvalid{Entity: entity, Reason: reason}
}

// ParseError reports a syntactic failure at a specific position in the
// schema text.
type ParseError struct {
	Line    int
	Col     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Col, e.Message)
}
