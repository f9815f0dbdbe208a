package embedding

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/Aleph-Alpha/embedtools/v1/toolcall"
)

const embeddingsField = "embeddings"

type embeddingsPayload struct {
	Embeddings [][]float64 `mapstructure:"embeddings"`
}

// decodeEmbeddings extracts want vectors from a tool result. All vectors
// must share one length, equal to dimension when it is positive.
func decodeEmbeddings(value map[string]any, want, dimension int) ([][]float64, error) {
	if raw, ok := value[embeddingsField]; !ok || raw == nil {
		return nil, fmt.Errorf("%w: %w: result has no %q field", toolcall.ErrToolError, toolcall.ErrProtocolViolation, embeddingsField)
	}

	var payload embeddingsPayload
	if err := mapstructure.Decode(value, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", toolcall.ErrProtocolViolation, embeddingsField, err)
	}

	vectors := payload.Embeddings
	if len(vectors) != want {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", toolcall.ErrProtocolViolation, len(vectors), want)
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: empty vector", toolcall.ErrProtocolViolation)
	}
	if dimension > 0 && dim != dimension {
		return nil, fmt.Errorf("%w: vector length %d, expected %d", toolcall.ErrProtocolViolation, dim, dimension)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has length %d, vector 0 has %d", toolcall.ErrProtocolViolation, i, len(v), dim)
		}
	}
	return vectors, nil
}
