package offline

import "encoding/json"

// encodePayload serializes an arbitrary payload to its canonical stored
// form and measures the encoded length. The size is fixed at insertion
// time and never recomputed from the stored row, so later format changes
// cannot retroactively corrupt size totals.
//
// Strings and byte slices are stored as-is; everything else is JSON.
func encodePayload(v any) (string, int64, error) {
	switch p := v.(type) {
	case nil:
		return "", 0, nil
	case string:
		return p, int64(len(p)), nil
	case []byte:
		return string(p), int64(len(p)), nil
	case json.RawMessage:
		return string(p), int64(len(p)), nil
	default:
		data, err := json.Marshal(p)
		if err != nil {
			return "", 0, err
		}
		return string(data), int64(len(data)), nil
	}
}
