// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package schema holds the typed representation of a linearbuffers
// schema: enums, tables, fields and the distinguished root (output) table.
// Entities are constructed once by the parser and are immutable afterwards,
// save for the namespace override a driver may apply before code emission.
package schema

import "fmt"

// Type identifies the kind of value a field or enum member holds.
type Type int

// Field and enum base types. Widths follow spec.md's slot-size table.
const (
	Int8 Type = iota + 1
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	String
	Enum
	Table
)

// Width returns the slot size in bytes of a scalar type, or 0 for String,
// Enum and Table (those have type-dependent or pointer-sized slots).
func (t Type) Width() int {
	switch t {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		return 0
	}
}

// IsInteger reports whether t is one of the signed/unsigned integer kinds.
func (t Type) IsInteger() bool {
	switch t {
	case Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	switch t {
	case Int8:
		return "i8"
	case Int16:
		return "i16"
	case Int32:
		return "i32"
	case Int64:
		return "i64"
	case Uint8:
		return "u8"
	case Uint16:
		return "u16"
	case Uint32:
		return "u32"
	case Uint64:
		return "u64"
	case Float32:
		return "f32"
	case Float64:
		return "f64"
	case String:
		return "string"
	case Enum:
		return "enum"
	case Table:
		return "table"
	default:
		return "?"
	}
}

// MarshalJSON renders a Type as its wire-syntax name (spec.md §6
// --pretty output), rather than its underlying int value.
func (t Type) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// Cardinality distinguishes a single-valued field from a vector field.
type Cardinality int

const (
	// Single is a plain, non-repeated field.
	Single Cardinality = iota
	// Vector is a field holding a vector of Type-typed elements.
	Vector
)

// EnumMember is one (name, value) pair of an Enum.
type EnumMember struct {
	Name  string
	Value int64
}

// Enum is a named, ordered set of integer members sharing an integer base
// type.
type Enum struct {
	Name    string
	Base    Type // one of Int8/16/32/64/Uint8/16/32/64
	Members []EnumMember
}

// Member looks up a member by name.
func (e *Enum) Member(name string) (EnumMember, bool) {
	for _, m := range e.Members {
		if m.Name == name {
			return m, true
		}
	}
	return EnumMember{}, false
}

// Literal is a scalar default value attached to a Field.
type Literal struct {
	Int   int64
	Float float64
	IsInt bool
}

// Field is one named, typed member of a Table, fixed at its schema-order
// index for the lifetime of the schema (that index is the field's
// presence-bitmap bit and payload-slot position).
type Field struct {
	Name        string
	Type        Type
	Ref         string // Enum or Table name, when Type is Enum or Table
	Cardinality Cardinality
	Default     *Literal // scalars only; nil means zero-value default
}

// SlotSize returns the number of bytes this field occupies in its table's
// fixed payload region: the scalar/enum width, or 8 for an offset slot
// (string, table, or any vector).
func (f Field) SlotSize(s *Schema) int {
	if f.Cardinality == Vector {
		return 8
	}
	switch f.Type {
	case Enum:
		if en, ok := s.Enum(f.Ref); ok {
			return en.Base.Width()
		}
		return 0
	case String, Table:
		return 8
	default:
		return f.Type.Width()
	}
}

// Table is a named, ordered collection of optional typed Fields. Field
// order is schema order and fixes each field's presence-bitmap bit and
// payload-slot position.
type Table struct {
	Name   string
	Fields []Field
}

// FieldCount returns the number of fields N, used to size the presence
// bitmap and payload region.
func (t *Table) FieldCount() int {
	return len(t.Fields)
}

// BitmapSize returns ceil(N/8), the size in bytes of the presence bitmap.
func (t *Table) BitmapSize() int {
	return (len(t.Fields) + 7) / 8
}

// PayloadSize returns the total size in bytes of the fixed payload region
// (the sum of every field's slot size).
func (t *Table) PayloadSize(s *Schema) int {
	total := 0
	for _, f := range t.Fields {
		total += f.SlotSize(s)
	}
	return total
}

// HeaderSize returns BitmapSize + PayloadSize: the deterministic total size
// of this table's own encoding (excluding anything it points to).
func (t *Table) HeaderSize(s *Schema) int {
	return t.BitmapSize() + t.PayloadSize(s)
}

// FieldIndex returns the schema-order index of the named field, or -1.
func (t *Table) FieldIndex(name string) int {
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// SlotOffset returns the byte offset, relative to the start of this
// table's encoding, of field i's payload slot (after the bitmap and any
// preceding fields' slots).
func (t *Table) SlotOffset(s *Schema, i int) int {
	off := t.BitmapSize()
	for j := 0; j < i; j++ {
		off += t.Fields[j].SlotSize(s)
	}
	return off
}

// Schema is the top-level, immutable (post-construction) container: an
// optional namespace, the ordered enums and tables, and the name of the
// distinguished root (output) table.
type Schema struct {
	Namespace string
	Enums     []Enum
	Tables    []Table
	Root      string
}

// New validates enums, tables and the root name and returns an immutable
// Schema, or a *SchemaInvalid describing the first violation found.
//
// Checked, in order: enum name/member-name/value-range, table name/field-
// name, unresolved Enum/Table refs, and root resolution. Vector-of-vector
// fields have no representation in Field (Cardinality is not recursive),
// so that invariant holds by construction rather than by a runtime check.
func New(namespace string, enums []Enum, tables []Table, root string) (*Schema, error) {
	seenEnum := map[string]bool{}
	for _, e := range enums {
		if seenEnum[e.Name] {
			return nil, invalid("enum "+e.Name, ErrDuplicateName)
		}
		seenEnum[e.Name] = true

		seenMember := map[string]bool{}
		for _, m := range e.Members {
			if seenMember[m.Name] {
				return nil, invalid(fmt.Sprintf("enum %s member %s", e.Name, m.Name), ErrDuplicateName)
			}
			seenMember[m.Name] = true

			if !valueFitsBase(m.Value, e.Base) {
				return nil, invalid(fmt.Sprintf("enum %s member %s", e.Name, m.Name), ErrEnumValueRange)
			}
		}
	}

	s := &Schema{Namespace: namespace, Enums: enums, Tables: tables, Root: root}

	seenTable := map[string]bool{}
	for ti := range tables {
		t := &tables[ti]
		if seenTable[t.Name] {
			return nil, invalid("table "+t.Name, ErrDuplicateName)
		}
		seenTable[t.Name] = true

		seenField := map[string]bool{}
		for _, f := range t.Fields {
			if seenField[f.Name] {
				return nil, invalid(fmt.Sprintf("table %s field %s", t.Name, f.Name), ErrDuplicateName)
			}
			seenField[f.Name] = true

			if f.Default != nil && (f.Cardinality == Vector || !f.Type.IsInteger() && f.Type != Float32 && f.Type != Float64 && f.Type != Enum) {
				return nil, invalid(fmt.Sprintf("table %s field %s", t.Name, f.Name), ErrBadDefault)
			}

			switch f.Type {
			case Enum:
				if _, ok := s.Enum(f.Ref); !ok {
					return nil, invalid(fmt.Sprintf("table %s field %s", t.Name, f.Name), ErrUnresolvedRef)
				}
			case Table:
				if _, ok := s.Table(f.Ref); !ok {
					return nil, invalid(fmt.Sprintf("table %s field %s", t.Name, f.Name), ErrUnresolvedRef)
				}
			}
		}
	}

	if _, ok := s.Table(root); !ok {
		return nil, invalid("schema root", ErrNoRootTable)
	}

	return s, nil
}

func valueFitsBase(v int64, base Type) bool {
	switch base {
	case Int8:
		return v >= -1<<7 && v <= 1<<7-1
	case Int16:
		return v >= -1<<15 && v <= 1<<15-1
	case Int32:
		return v >= -1<<31 && v <= 1<<31-1
	case Int64:
		return true
	case Uint8:
		return v >= 0 && v <= 1<<8-1
	case Uint16:
		return v >= 0 && v <= 1<<16-1
	case Uint32:
		return v >= 0 && v <= 1<<32-1
	case Uint64:
		return v >= 0
	default:
		return false
	}
}

// Enum resolves a name to its Enum definition.
func (s *Schema) Enum(name string) (*Enum, bool) {
	for i := range s.Enums {
		if s.Enums[i].Name == name {
			return &s.Enums[i], true
		}
	}
	return nil, false
}

// Table resolves a name to its Table definition.
func (s *Schema) Table(name string) (*Table, bool) {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i], true
		}
	}
	return nil, false
}

// RootTable returns the schema's distinguished output table.
func (s *Schema) RootTable() *Table {
	t, _ := s.Table(s.Root)
	return t
}

// SetNamespace overrides the schema's namespace. It is the only mutation
// permitted after New has validated the schema, matching a driver's
// --namespace flag (spec.md §6).
func (s *Schema) SetNamespace(ns string) {
	s.Namespace = ns
}
