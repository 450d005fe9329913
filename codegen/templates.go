// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package codegen

import "github.com/alperakcan/linearbuffers/schema"

// fieldData is one table field flattened into template-friendly shape.
type fieldData struct {
	Name       string
	Index      int
	SlotOffset int
	Width      int
	Type       string // "scalar", "enum", "string", "table", "vector"
	ElemWidth  int    // scalar-vector element width; 0 otherwise
	VectorKind string // "scalar", "string", "table"; "" when not a vector
	Ref        string // enum/table name this field refers to
}

// tableData is one schema table flattened for a Generator's templates.
type tableData struct {
	Namespace   string
	Name        string
	BitmapSize  int
	PayloadSize int
	IsRoot      bool
	Fields      []fieldData
}

// schemaData is the full template input for one Generator invocation.
type schemaData struct {
	Namespace      string
	UseMemcpy      bool
	IncludeLibrary bool
	Tables         []tableData
	RootTable      string
}

func buildSchemaData(s *schema.Schema) schemaData {
	d := schemaData{Namespace: s.Namespace, RootTable: s.Root}
	for _, t := range s.Tables {
		td := tableData{
			Namespace:   s.Namespace,
			Name:        t.Name,
			BitmapSize:  t.BitmapSize(),
			PayloadSize: t.PayloadSize(s),
			IsRoot:      t.Name == s.Root,
		}
		for i, f := range t.Fields {
			fd := fieldData{
				Name:       f.Name,
				Index:      i,
				SlotOffset: t.SlotOffset(s, i),
				Ref:        f.Ref,
			}
			switch {
			case f.Cardinality == schema.Vector:
				fd.Type = "vector"
				switch f.Type {
				case schema.String:
					fd.VectorKind = "string"
				case schema.Table:
					fd.VectorKind = "table"
				case schema.Enum:
					fd.VectorKind = "scalar"
					if en, ok := s.Enum(f.Ref); ok {
						fd.ElemWidth = en.Base.Width()
					}
				default:
					fd.VectorKind = "scalar"
					fd.ElemWidth = f.Type.Width()
				}
			case f.Type == schema.String:
				fd.Type = "string"
			case f.Type == schema.Table:
				fd.Type = "table"
			case f.Type == schema.Enum:
				fd.Type = "enum"
				if en, ok := s.Enum(f.Ref); ok {
					fd.Width = en.Base.Width()
				}
			default:
				fd.Type = "scalar"
				fd.Width = f.Type.Width()
			}
			td.Fields = append(td.Fields, fd)
		}
		d.Tables = append(d.Tables, td)
	}
	return d
}
