// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package schema

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	xunicode "golang.org/x/text/encoding/unicode"
)

// ParseFile reads path and parses it as a linearbuffers schema. path may be
// UTF-8 or UTF-16-with-BOM text; golang.org/x/text/encoding/unicode is used
// to transcode UTF-16 input the same way helper.go's DecodeUTF16String
// transcodes embedded PE strings.
func ParseFile(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse reads all of r and parses it as a linearbuffers schema. name
// identifies the input for the caller; Parse does not use it, and a
// ParseError carries only a line and column.
func Parse(r io.Reader, name string) (*Schema, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw = stripBOM(raw)

	p := &parser{toks: tokenize(string(raw))}
	return p.parseSchema()
}

// stripBOM transcodes a UTF-16 BOM-prefixed buffer to UTF-8, leaving
// anything else (including plain UTF-8 with no BOM) untouched.
func stripBOM(b []byte) []byte {
	if len(b) < 2 {
		return b
	}
	isLE := b[0] == 0xff && b[1] == 0xfe
	isBE := b[0] == 0xfe && b[1] == 0xff
	if !isLE && !isBE {
		return b
	}
	enc := xunicode.UTF16(xunicode.LittleEndian, xunicode.ExpectBOM)
	if isBE {
		enc = xunicode.UTF16(xunicode.BigEndian, xunicode.ExpectBOM)
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return b
	}
	return out
}

// --- tokenizer -------------------------------------------------------------

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokPunct
)

type token struct {
	kind       tokenKind
	text       string
	line, col  int
}

func tokenize(src string) []token {
	var toks []token
	line, col := 1, 1
	i := 0
	advance := func(n int) {
		for j := 0; j < n; j++ {
			if i+j < len(src) && src[i+j] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
		i += n
	}

	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			advance(1)
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				advance(1)
			}
		case unicode.IsLetter(rune(c)) || c == '_':
			start, startLine, startCol := i, line, col
			for i < len(src) {
				r, size := utf8.DecodeRuneInString(src[i:])
				if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
					break
				}
				advance(size)
			}
			toks = append(toks, token{tokIdent, src[start:i], startLine, startCol})
		case c >= '0' && c <= '9' || (c == '-' && i+1 < len(src) && src[i+1] >= '0' && src[i+1] <= '9'):
			start, startLine, startCol := i, line, col
			if c == '-' {
				advance(1)
			}
			for i < len(src) && (isDigit(src[i]) || src[i] == 'x' || src[i] == 'X' || isHexDigit(src[i])) {
				advance(1)
			}
			if i < len(src) && src[i] == '.' && i+1 < len(src) && isDigit(src[i+1]) {
				advance(1)
				for i < len(src) && isDigit(src[i]) {
					advance(1)
				}
			}
			toks = append(toks, token{tokNumber, src[start:i], startLine, startCol})
		case c == '"':
			start, startLine, startCol := i, line, col
			advance(1)
			for i < len(src) && src[i] != '"' {
				advance(1)
			}
			if i < len(src) {
				advance(1)
			}
			toks = append(toks, token{tokString, src[start:i], startLine, startCol})
		default:
			toks = append(toks, token{tokPunct, string(c), line, col})
			advance(1)
		}
	}
	toks = append(toks, token{tokEOF, "", line, col})
	return toks
}

func isDigit(c byte) bool    { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool { return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') }

// --- recursive-descent parser -----------------------------------------------

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) errf(t token, format string, args ...any) error {
	return &ParseError{Line: t.line, Col: t.col, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) expectPunct(s string) (token, error) {
	t := p.peek()
	if t.kind != tokPunct || t.text != s {
		return t, p.errf(t, "expected %q, got %q", s, t.text)
	}
	return p.next(), nil
}

func (p *parser) expectIdent() (token, error) {
	t := p.peek()
	if t.kind != tokIdent {
		return t, p.errf(t, "expected identifier, got %q", t.text)
	}
	return p.next(), nil
}

func (p *parser) parseSchema() (*Schema, error) {
	var namespace string
	var enums []Enum
	var tables []Table
	var root string

	for p.peek().kind != tokEOF {
		kw, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		switch kw.text {
		case "namespace":
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			namespace = name.text
			if _, err := p.expectPunct(";"); err != nil {
				return nil, err
			}
		case "enum":
			e, err := p.parseEnum()
			if err != nil {
				return nil, err
			}
			enums = append(enums, e)
		case "table":
			t, err := p.parseTable()
			if err != nil {
				return nil, err
			}
			tables = append(tables, t)
		case "output":
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			root = name.text
			if _, err := p.expectPunct(";"); err != nil {
				return nil, err
			}
		default:
			return nil, p.errf(kw, "unexpected keyword %q", kw.text)
		}
	}

	if err := resolveNamedFields(enums, tables); err != nil {
		return nil, err
	}

	return New(namespace, enums, tables, root)
}

// resolveNamedFields fills in Type (Enum or Table) for every field left
// with the zero-value "named reference, kind TBD" marker by parseFieldType.
// An unknown name is marked as a Table reference, so it surfaces as
// ErrUnresolvedRef from schema.New's table lookup.
func resolveNamedFields(enums []Enum, tables []Table) error {
	enumNames := map[string]bool{}
	for _, e := range enums {
		enumNames[e.Name] = true
	}
	tableNames := map[string]bool{}
	for _, t := range tables {
		tableNames[t.Name] = true
	}

	for ti := range tables {
		for fi := range tables[ti].Fields {
			f := &tables[ti].Fields[fi]
			if f.Type != 0 || f.Ref == "" {
				continue
			}
			switch {
			case enumNames[f.Ref]:
				f.Type = Enum
			case tableNames[f.Ref]:
				f.Type = Table
			default:
				// Mark it as a Table so New's type switch runs its table
				// lookup, which fails for an unknown name and reports
				// ErrUnresolvedRef.
				f.Type = Table
			}
		}
	}
	return nil
}

func (p *parser) parseEnum() (Enum, error) {
	name, err := p.expectIdent()
	if err != nil {
		return Enum{}, err
	}
	if _, err := p.expectPunct(":"); err != nil {
		return Enum{}, err
	}
	baseTok, err := p.expectIdent()
	if err != nil {
		return Enum{}, err
	}
	base, ok := parseBaseType(baseTok.text)
	if !ok {
		return Enum{}, p.errf(baseTok, "unknown enum base type %q", baseTok.text)
	}
	if _, err := p.expectPunct("{"); err != nil {
		return Enum{}, err
	}

	e := Enum{Name: name.text, Base: base}
	next := int64(0)
	for {
		if p.peek().kind == tokPunct && p.peek().text == "}" {
			p.next()
			break
		}
		memberName, err := p.expectIdent()
		if err != nil {
			return Enum{}, err
		}
		value := next
		if p.peek().kind == tokPunct && p.peek().text == "=" {
			p.next()
			numTok := p.next()
			if numTok.kind != tokNumber {
				return Enum{}, p.errf(numTok, "expected integer value, got %q", numTok.text)
			}
			v, err := strconv.ParseInt(numTok.text, 0, 64)
			if err != nil {
				return Enum{}, p.errf(numTok, "invalid integer literal %q", numTok.text)
			}
			value = v
		}
		e.Members = append(e.Members, EnumMember{Name: memberName.text, Value: value})
		next = value + 1

		if p.peek().kind == tokPunct && p.peek().text == "," {
			p.next()
			continue
		}
		if _, err := p.expectPunct("}"); err != nil {
			return Enum{}, err
		}
		break
	}
	if _, err := p.expectPunct(";"); err != nil {
		return Enum{}, err
	}
	return e, nil
}

func (p *parser) parseTable() (Table, error) {
	name, err := p.expectIdent()
	if err != nil {
		return Table{}, err
	}
	if _, err := p.expectPunct("{"); err != nil {
		return Table{}, err
	}

	t := Table{Name: name.text}
	for {
		if p.peek().kind == tokPunct && p.peek().text == "}" {
			p.next()
			break
		}
		f, err := p.parseField()
		if err != nil {
			return Table{}, err
		}
		t.Fields = append(t.Fields, f)
	}
	if _, err := p.expectPunct(";"); err != nil {
		return Table{}, err
	}
	return t, nil
}

func (p *parser) parseField() (Field, error) {
	name, err := p.expectIdent()
	if err != nil {
		return Field{}, err
	}
	if _, err := p.expectPunct(":"); err != nil {
		return Field{}, err
	}

	f := Field{Name: name.text}

	if p.peek().kind == tokPunct && p.peek().text == "[" {
		p.next()
		f.Cardinality = Vector
		if err := p.parseFieldType(&f); err != nil {
			return Field{}, err
		}
		if _, err := p.expectPunct("]"); err != nil {
			return Field{}, err
		}
	} else {
		if err := p.parseFieldType(&f); err != nil {
			return Field{}, err
		}
	}

	if p.peek().kind == tokPunct && p.peek().text == "=" {
		p.next()
		numTok := p.next()
		if numTok.kind != tokNumber {
			return Field{}, p.errf(numTok, "expected default value, got %q", numTok.text)
		}
		if strings.ContainsAny(numTok.text, ".") {
			fv, err := strconv.ParseFloat(numTok.text, 64)
			if err != nil {
				return Field{}, p.errf(numTok, "invalid float default %q", numTok.text)
			}
			f.Default = &Literal{Float: fv}
		} else {
			iv, err := strconv.ParseInt(numTok.text, 0, 64)
			if err != nil {
				return Field{}, p.errf(numTok, "invalid integer default %q", numTok.text)
			}
			f.Default = &Literal{Int: iv, IsInt: true}
		}
	}

	if _, err := p.expectPunct(";"); err != nil {
		return Field{}, err
	}
	return f, nil
}

func (p *parser) parseFieldType(f *Field) error {
	typeTok, err := p.expectIdent()
	if err != nil {
		return err
	}
	if base, ok := parseBaseType(typeTok.text); ok {
		f.Type = base
		return nil
	}
	if typeTok.text == "string" {
		f.Type = String
		return nil
	}
	// Otherwise it names a table or enum defined elsewhere in the same
	// file — which one is not yet decidable here, since enums and tables
	// may appear in either order. Leave Type at its zero value as a
	// "named reference, kind TBD" marker and stash the name in Ref;
	// resolveNamedFields (called once the whole file has been parsed)
	// looks the name up against the complete enum/table sets and fills
	// in Type accordingly.
	f.Ref = typeTok.text
	return nil
}

func parseBaseType(name string) (Type, bool) {
	switch name {
	case "i8":
		return Int8, true
	case "i16":
		return Int16, true
	case "i32":
		return Int32, true
	case "i64":
		return Int64, true
	case "u8":
		return Uint8, true
	case "u16":
		return Uint16, true
	case "u32":
		return Uint32, true
	case "u64":
		return Uint64, true
	case "f32":
		return Float32, true
	case "f64":
		return Float64, true
	default:
		return 0, false
	}
}
