package listing

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
)

// LoadSnapshot reads a listings snapshot file produced by the retrieval
// subsystem. Scraped documents are loosely typed (years and prices sometimes
// arrive as strings), so the records are decoded weakly instead of straight
// into the struct.
func LoadSnapshot(path string) (*Listings, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer file.Close()

	var raw []map[string]any
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding snapshot %q: %w", path, err)
	}

	items := make([]*Listing, 0, len(raw))
	for i, record := range raw {
		l := &Listing{}
		if err := decodeWeakly(record, l); err != nil {
			return nil, fmt.Errorf("snapshot %q record %d: %w", path, i, err)
		}
		items = append(items, l)
	}

	return &Listings{Items: items}, nil
}

func decodeWeakly(input map[string]any, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           output,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc("2006-01-02T15:04:05Z07:00"),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
