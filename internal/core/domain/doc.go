// Package domain defines the core entities for RemUp.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: The compiled note tree (archives of cards)
//   - Archive: A named grouping of cards
//   - Card: A themed unit of labels and regions
//   - Annotation: An inline annotated span ("vibe card")
//   - Token: One unit of the lexed source stream
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
