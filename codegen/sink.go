// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package codegen implements the per-language code emitters of
// spec.md §4.F: mechanical text/template assembly over a validated
// schema.Schema, dispatched through a language-name-keyed table in the
// same spirit as the original project's generators[] function-pointer
// array.
package codegen

import (
	"bytes"
	"io"
	"text/template"
)

// Sink is spec.md §9's "function-pointer callback" for JSON
// pretty-printing, re-expressed as an interface: every emitter renders its
// whole text and hands it to a Sink in one Write call instead of writing
// to a fixed destination.
type Sink interface {
	Write(formatted string) error
}

// WriterSink adapts an io.Writer to Sink, generalizing
// cmd/pedumper.go's prettyPrint helper (which hardcodes os.Stdout) to any
// destination.
type WriterSink struct {
	W io.Writer
}

// Write writes formatted followed by a newline to the underlying writer.
func (s WriterSink) Write(formatted string) error {
	_, err := io.WriteString(s.W, formatted+"\n")
	return err
}

// execToSink renders tmpl against data and hands the result to a
// WriterSink over w, the common last step of every Generator method: none
// of them writes directly to w, they all funnel their formatted text
// through the Sink abstraction.
func execToSink(tmpl *template.Template, data any, w io.Writer) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return err
	}
	return WriterSink{W: w}.Write(buf.String())
}
