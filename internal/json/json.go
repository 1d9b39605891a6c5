// Package json wraps bytedance/sonic with the subset of the encoding/json API
// the client needs. Sonic is configured for standard-library compatibility so
// decoded numbers, maps and escaping match encoding/json.
package json

import "github.com/bytedance/sonic"

var api = sonic.ConfigStd

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

// Unmarshal parses the JSON-encoded data and stores the result in v.
func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

// MarshalIndent is like Marshal but applies Indent to format the output.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return api.MarshalIndent(v, prefix, indent)
}
