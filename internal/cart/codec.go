package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// SchemaVersion is written into every saved cart document
const SchemaVersion = 1

// ErrUnsupportedVersion is returned for documents written by a newer schema
var ErrUnsupportedVersion = errors.New("unsupported cart schema version")

type document struct {
	Version int                `json:"version"`
	Items   []models.CartEntry `json:"items"`
}

// Encode serializes entries as a versioned cart document
func Encode(entries []models.CartEntry) ([]byte, error) {
	if entries == nil {
		entries = []models.CartEntry{}
	}
	data, err := json.Marshal(document{Version: SchemaVersion, Items: entries})
	if err != nil {
		return nil, fmt.Errorf("failed to encode cart: %w", err)
	}
	return data, nil
}

// Decode parses a versioned cart document, or a bare JSON array of entries
// as written before documents were versioned. Entries without a positive
// quantity are read as quantity 1, and repeated product ids are merged into
// the first entry.
func Decode(data []byte) ([]models.CartEntry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var entries []models.CartEntry
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode cart: %w", err)
		}
	} else {
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode cart: %w", err)
		}
		if doc.Version != SchemaVersion {
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
		}
		entries = doc.Items
	}

	return normalize(entries), nil
}

func normalize(entries []models.CartEntry) []models.CartEntry {
	out := make([]models.CartEntry, 0, len(entries))
	seen := make(map[int64]int, len(entries))
	for _, e := range entries {
		if e.Quantity <= 0 {
			e.Quantity = 1
		}
		if i, ok := seen[e.ID]; ok {
			out[i].Quantity += e.Quantity
			continue
		}
		seen[e.ID] = len(out)
		out = append(out, e)
	}
	return out
}
