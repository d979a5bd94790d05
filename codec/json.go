package codec

import "encoding/json"

// JSON decodes with encoding/json. It accepts the same documents as GoJSON
// and exists as the portable fallback selectable by name.
type JSON struct{}

// Marshal encodes v as one JSON document.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes one JSON Lines payload into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns "json".
func (JSON) Name() string { return "json" }
