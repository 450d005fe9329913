// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package codegen

import (
	"io"
	"text/template"

	"github.com/alperakcan/linearbuffers/schema"
)

// cGenerator emits C-shaped source text calling into a linearbuffers-
// style runtime, naming functions the way original_source/src/main.c's
// own emitted wrappers do (linearbuffers_<namespace>_<table>_<verb>).
// Because spec.md treats the target-language emitters as an external
// collaborator specified only by contract, this is literal-compatible
// text assembly rather than a function a C toolchain in this repo
// builds.
type cGenerator struct{}

var cEncoderTmpl = template.Must(template.New("c-encoder").Parse(`{{if .IncludeLibrary}}#include "linearbuffers/encoder.c"
{{else}}#include <linearbuffers/encoder.h>
{{end}}{{range .Tables}}
int linearbuffers_{{$.Namespace}}_{{.Name}}_start(struct linearbuffers_encoder *encoder)
{
	return linearbuffers_encoder_table_start(encoder, {{.BitmapSize}}, {{.PayloadSize}});
}
{{$table := .Name}}{{range .Fields}}{{if eq .Type "scalar"}}
int linearbuffers_{{$.Namespace}}_{{$table}}_{{.Name}}_set(struct linearbuffers_encoder *encoder, uint64_t value)
{
	return linearbuffers_encoder_table_set_scalar(encoder, {{.Index}}, {{.SlotOffset}}, {{.Width}}, value);
}
{{end}}{{end}}
int linearbuffers_{{$.Namespace}}_{{.Name}}_end(struct linearbuffers_encoder *encoder, uint64_t *offsetp)
{
	return linearbuffers_encoder_table_end(encoder, offsetp);
}
{{end}}`))

var cDecoderTmpl = template.Must(template.New("c-decoder").Parse(`{{range .Tables}}
int linearbuffers_{{$.Namespace}}_{{.Name}}_decode(const uint8_t *buffer, uint64_t length, struct linearbuffers_view *viewp)
{
	return linearbuffers_decoder_decode(buffer, length, {{if $.UseMemcpy}}1{{else}}0{{end}}, viewp);
}
{{$table := .Name}}{{range .Fields}}{{if eq .Type "scalar"}}
int linearbuffers_{{$.Namespace}}_{{$table}}_{{.Name}}_get(const struct linearbuffers_view *view, uint64_t *valuep)
{
	return linearbuffers_decoder_scalar(view, {{.SlotOffset}}, {{.Width}}, valuep);
}
{{end}}{{end}}{{end}}`))

var cJSONTmpl = template.Must(template.New("c-jsonify").Parse(`{{range .Tables}}{{if .IsRoot}}
int linearbuffers_{{$.Namespace}}_{{.Name}}_jsonify(const struct linearbuffers_view *view, linearbuffers_jsonify_sink_t sink, void *context)
{
	return linearbuffers_decoder_jsonify(view, sink, context);
}
{{end}}{{end}}`))

func (cGenerator) EmitEncoder(s *schema.Schema, w io.Writer, includeLibrary bool) error {
	d := buildSchemaData(s)
	d.IncludeLibrary = includeLibrary
	return execToSink(cEncoderTmpl, d, w)
}

func (cGenerator) EmitDecoder(s *schema.Schema, w io.Writer, useMemcpy bool) error {
	d := buildSchemaData(s)
	d.UseMemcpy = useMemcpy
	return execToSink(cDecoderTmpl, d, w)
}

func (cGenerator) EmitJSONify(s *schema.Schema, w io.Writer) error {
	return execToSink(cJSONTmpl, buildSchemaData(s), w)
}
