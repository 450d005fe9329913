// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command linearbuffersc is the schema compiler driver of spec.md §6: it
// parses a schema file and emits encoder/decoder/jsonify/pretty source
// for one target language.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alperakcan/linearbuffers/codegen"
	"github.com/alperakcan/linearbuffers/logx"
	"github.com/alperakcan/linearbuffers/schema"
)

var (
	schemaPath            string
	outputPath            string
	language              string
	pretty                string
	encoder               string
	encoderIncludeLibrary string
	decoder               string
	decoderUseMemcpy      string
	jsonify               string
	namespace             string
	logLevel              string
)

// normalizeBool parses the value of a boolean flag. The boolean flags are
// declared as plain string flags, so this function alone decides the
// accepted spellings: {t,true,y,yes,1} and {f,false,n,no,0},
// case-insensitive, with an unset (empty) flag reading as false.
func normalizeBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "t", "true", "y", "yes", "1":
		return true, nil
	case "f", "false", "n", "no", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value %q", s)
	}
}

// run executes one generate invocation and returns the process exit
// code, with stdout/stderr factored out for testability (the teacher's
// parsePE/parse functions wire directly to the global log/fmt instead;
// here the driver's own output is a first-class argument so tests can
// capture it without touching os.Stdout).
func run(stdout, stderr io.Writer) int {
	log := logx.New(stderr, logx.LevelWarning)
	if logLevel != "" {
		lvl, err := logx.ParseLevel(logLevel)
		if err != nil {
			fmt.Fprintf(stderr, "linearbuffersc: %v\n", err)
			return 1
		}
		log.SetLevel(lvl)
	}

	fail := func(phase string, err error) int {
		fmt.Fprintf(stderr, "linearbuffersc: %s: %s: %v\n", phase, schemaPath, err)
		if outputPath != "" && outputPath != "stdout" && outputPath != "stderr" {
			os.Remove(outputPath)
		}
		return 1
	}

	s, err := schema.ParseFile(schemaPath)
	if err != nil {
		return fail("parse", err)
	}
	if namespace != "" {
		s.SetNamespace(namespace)
	}

	wantPretty, err := normalizeBool(pretty)
	if err != nil {
		return fail("argument", err)
	}
	wantEncoder, err := normalizeBool(encoder)
	if err != nil {
		return fail("argument", err)
	}
	includeLibrary, err := normalizeBool(encoderIncludeLibrary)
	if err != nil {
		return fail("argument", err)
	}
	wantDecoder, err := normalizeBool(decoder)
	if err != nil {
		return fail("argument", err)
	}
	useMemcpy, err := normalizeBool(decoderUseMemcpy)
	if err != nil {
		return fail("argument", err)
	}
	wantJSONify, err := normalizeBool(jsonify)
	if err != nil {
		return fail("argument", err)
	}
	if wantJSONify {
		wantDecoder = true
	}

	if wantPretty && (wantEncoder || wantDecoder || wantJSONify) {
		return fail("argument", fmt.Errorf("--pretty is mutually exclusive with --encoder/--decoder/--jsonify"))
	}

	var out io.Writer
	switch outputPath {
	case "", "stdout":
		out = stdout
	case "stderr":
		out = stderr
	default:
		f, err := os.Create(outputPath)
		if err != nil {
			return fail("output", err)
		}
		defer f.Close()
		out = f
	}

	if wantPretty {
		if err := codegen.EmitPretty(s, out); err != nil {
			return fail("emit", err)
		}
		return 0
	}

	gen, ok := codegen.Lookup(language)
	if !ok {
		return fail("argument", fmt.Errorf("unknown language %q", language))
	}

	if wantEncoder {
		if err := gen.EmitEncoder(s, out, includeLibrary); err != nil {
			return fail("emit", err)
		}
	}
	if wantDecoder {
		if err := gen.EmitDecoder(s, out, useMemcpy); err != nil {
			return fail("emit", err)
		}
	}
	if wantJSONify {
		if err := gen.EmitJSONify(s, out); err != nil {
			return fail("emit", err)
		}
	}

	log.Infof("generated %s for schema %s", language, schemaPath)
	return 0
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "linearbuffersc",
		Short: "Schema compiler for the linearbuffers wire format",
		Long:  "linearbuffersc parses a linearbuffers schema and emits encoder, decoder, jsonify or pretty-print source for a target language.",
		RunE: func(cmd *cobra.Command, args []string) error {
			code := run(cmd.OutOrStdout(), cmd.OutOrStderr())
			if code != 0 {
				os.Exit(code)
			}
			return nil
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&schemaPath, "schema", "", "input schema file (required)")
	flags.StringVar(&outputPath, "output", "stdout", "output destination (path, stdout, stderr)")
	flags.StringVar(&language, "language", "c", "target language (c, js)")
	flags.StringVar(&pretty, "pretty", "", "emit schema pretty-print; mutually exclusive with encoder/decoder/jsonify")
	flags.StringVar(&encoder, "encoder", "", "emit encoder wrappers")
	flags.StringVar(&encoderIncludeLibrary, "encoder-include-library", "", "inline runtime into the emitted file")
	flags.StringVar(&decoder, "decoder", "", "emit decoder wrappers")
	flags.StringVar(&decoderUseMemcpy, "decoder-use-memcpy", "", "emit unaligned-safe reads")
	flags.StringVar(&jsonify, "jsonify", "", "emit JSON pretty-printer (implies decoder)")
	flags.StringVar(&namespace, "namespace", "", "override schema namespace for emission")
	flags.StringVar(&logLevel, "log-level", "", "silent, error, warning, notice, info, debug")
	_ = rootCmd.MarkFlagRequired("schema")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
