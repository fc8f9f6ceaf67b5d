package embedding

import "context"

// Dim is the fixed dimensionality of every stored profile embedding.
// The pgvector column is declared with the same width; vectors of any
// other length are a bug, not a tunable.
const Dim = 1536

// Embedder converts profile text into a fixed-length dense vector.
// Implementations must treat provider errors and timeouts as a single
// failure mode; callers persist "no embedding" and move on rather than
// failing the profile save. Calling Embed with empty text is a
// precondition violation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
