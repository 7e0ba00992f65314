// Package services implements the core compilation pipeline.
//
// The pipeline is strictly sequential per source text: Lexer produces
// the token stream, Parser builds the document tree with recovery, and
// Linker derives the annotation archive and cross-reference labels.
// Compiler wires the three together behind the driving.CompilerService
// port; Batch adds cache-aware parallel directory builds on top.
//
// Services depend only on domain types and ports, never on adapters.
package services
