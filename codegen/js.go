// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package codegen

import (
	"io"
	"text/template"

	"github.com/alperakcan/linearbuffers/schema"
)

// jsGenerator emits JS-shaped source text over the same schemaData the C
// generator consumes, illustrating how a JS runtime's class-per-table
// API would be generated; it is literal-compatible text assembly, the
// same contract-only stance cGenerator documents.
type jsGenerator struct{}

var jsEncoderTmpl = template.Must(template.New("js-encoder").Parse(`{{if .IncludeLibrary}}class LinearbuffersEncoder { /* inlined runtime */ }
{{else}}const { LinearbuffersEncoder } = require("linearbuffers");
{{end}}{{range .Tables}}
class {{.Name}}Builder {
  constructor(encoder) {
    this.encoder = encoder;
    this.encoder.startTable({{.BitmapSize}}, {{.PayloadSize}});
  }
{{$table := .Name}}{{range .Fields}}{{if eq .Type "scalar"}}
  set{{.Name}}(value) {
    return this.encoder.setScalar({{.Index}}, {{.SlotOffset}}, {{.Width}}, value);
  }
{{end}}{{end}}
  end() {
    return this.encoder.endTable();
  }
}
{{end}}`))

var jsDecoderTmpl = template.Must(template.New("js-decoder").Parse(`{{range .Tables}}
class {{.Name}}View {
  constructor(buffer, offset) {
    this.buffer = buffer;
    this.offset = offset;
    this.useMemcpy = {{if $.UseMemcpy}}true{{else}}false{{end}};
  }
{{$table := .Name}}{{range .Fields}}{{if eq .Type "scalar"}}
  get{{.Name}}() {
    return decodeScalar(this.buffer, this.offset + {{.SlotOffset}}, {{.Width}}, this.useMemcpy);
  }
{{end}}{{end}}
}
{{end}}`))

var jsJSONTmpl = template.Must(template.New("js-jsonify").Parse(`{{range .Tables}}{{if .IsRoot}}
function jsonify{{.Name}}(view) {
  return JSON.stringify(view);
}
{{end}}{{end}}`))

func (jsGenerator) EmitEncoder(s *schema.Schema, w io.Writer, includeLibrary bool) error {
	d := buildSchemaData(s)
	d.IncludeLibrary = includeLibrary
	return execToSink(jsEncoderTmpl, d, w)
}

func (jsGenerator) EmitDecoder(s *schema.Schema, w io.Writer, useMemcpy bool) error {
	d := buildSchemaData(s)
	d.UseMemcpy = useMemcpy
	return execToSink(jsDecoderTmpl, d, w)
}

func (jsGenerator) EmitJSONify(s *schema.Schema, w io.Writer) error {
	return execToSink(jsJSONTmpl, buildSchemaData(s), w)
}
