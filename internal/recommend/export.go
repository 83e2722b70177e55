package recommend

import (
	"encoding/json"
	"fmt"

	"cropwatch/internal/types"
)

// Export serializes a field recommendation to its stable JSON form, the
// shape consumed by the dashboard update layer and stored in the history
// table. Field names follow the wire contract on the domain structs.
func Export(rec *types.FieldRecommendation) ([]byte, error) {
	if rec == nil {
		return nil, fmt.Errorf("export: nil recommendation")
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: marshal field recommendation: %w", err)
	}
	return data, nil
}

// ParseExport reads a serialized field recommendation back into its domain
// form. Together with Export it round-trips exactly.
func ParseExport(data []byte) (*types.FieldRecommendation, error) {
	var rec types.FieldRecommendation
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("export: unmarshal field recommendation: %w", err)
	}
	return &rec, nil
}
