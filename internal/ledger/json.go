package ledger

import "encoding/json"

// decodeJSON unmarshals a jsonb column into a generic map, treating a NULL
// or empty column as an empty context rather than an error.
func decodeJSON(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
