// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package codegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/alperakcan/linearbuffers/schema"
)

// Generator is the per-language contract of spec.md §4.F: a schema goes
// in, source text calling into (or illustrating calls into) a
// linearbuffers runtime comes out.
type Generator interface {
	// EmitEncoder writes encoder wrapper source for every table in s.
	// When includeLibrary is true the runtime primitives themselves are
	// inlined into the emitted file rather than assumed to be linked
	// separately (spec.md §6 --encoder-include-library).
	EmitEncoder(s *schema.Schema, w io.Writer, includeLibrary bool) error

	// EmitDecoder writes decoder wrapper source for every table in s.
	// useMemcpy selects the generated scalar-read style (spec.md §6
	// --decoder-use-memcpy).
	EmitDecoder(s *schema.Schema, w io.Writer, useMemcpy bool) error

	// EmitJSONify writes a JSON pretty-printer for the schema's root
	// table (spec.md §6 --jsonify, "implies decoder").
	EmitJSONify(s *schema.Schema, w io.Writer) error
}

// Generators is the language-name-keyed dispatch table, the Go
// re-expression of the original main.c's generators[] function-pointer
// array (spec.md §9 "Polymorphic emitters").
var Generators = map[string]Generator{
	"c":  cGenerator{},
	"js": jsGenerator{},
}

// Lookup resolves a --language flag value to its Generator.
func Lookup(language string) (Generator, bool) {
	g, ok := Generators[language]
	return g, ok
}

// EmitPretty writes a schema's structure as indented JSON. Pretty-
// printing is schema-level, not per-language (spec.md §4.F "an
// additional 'pretty' mode"), so it is a free function rather than a
// Generator method; grounded on cmd/pedumper.go's prettyPrint helper,
// generalized from a hardcoded os.Stdout write to any io.Writer.
func EmitPretty(s *schema.Schema, w io.Writer) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("codegen: marshal schema: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("codegen: indent schema: %w", err)
	}
	return WriterSink{W: w}.Write(buf.String())
}
