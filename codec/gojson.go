package codec

import gojson "github.com/goccy/go-json"

// GoJSON decodes with github.com/goccy/go-json. The line buffer handed to
// Unmarshal is reused by the parser, so decoding goes through the
// NoEscape variants, which never retain the input.
type GoJSON struct{}

// Marshal encodes v as one JSON document.
func (GoJSON) Marshal(v any) ([]byte, error) { return gojson.MarshalNoEscape(v) }

// Unmarshal decodes one JSON Lines payload into v.
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.UnmarshalNoEscape(data, v) }

// Name returns "go-json".
func (GoJSON) Name() string { return "go-json" }
