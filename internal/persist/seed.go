package persist

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hotelier/hotelier-server/internal/model"
)

// LoadSeed reads the bundled hotel catalog from a JSON file. The seed is only
// consulted when the database holds no hotels yet, so redeploys never clobber
// computed scores.
func LoadSeed(path string) ([]model.Hotel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hotel seed: %w", err)
	}

	var hotels []model.Hotel
	if err := json.Unmarshal(data, &hotels); err != nil {
		return nil, fmt.Errorf("decode hotel seed: %w", err)
	}

	for i, h := range hotels {
		if h.Name == "" || h.City == "" {
			return nil, fmt.Errorf("seed hotel at index %d is missing name or city", i)
		}
	}
	return hotels, nil
}
