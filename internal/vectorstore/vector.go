package vectorstore

import (
	"strconv"
	"strings"
)

// vectorLiteral renders a vector as the bracketed literal format named in
// the adapter's contract (`[v1,v2,...]`), suitable for splicing into a
// cosineDistance(...) expression against a fixed query vector. Embedding
// values are finite floats produced by our own embedding client, so no
// escaping beyond numeric formatting is required.
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
