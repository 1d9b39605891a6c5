package api

import (
	"github.com/tidwall/gjson"

	"github.com/pbelskiy/helix-swarm/internal/json"
)

// Result is a successfully interpreted response body.
type Result struct {
	raw   []byte
	value any
}

// NewResult decodes raw and returns it as a Result.
func NewResult(raw []byte) (Result, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return Result{}, err
	}
	return Result{raw: raw, value: value}, nil
}

// Raw returns the undecoded body.
func (r Result) Raw() []byte {
	return r.raw
}

// Value returns the decoded body: map[string]any, []any or a scalar.
func (r Result) Value() any {
	return r.value
}

// Map returns the decoded body when it is a JSON object, nil otherwise.
func (r Result) Map() map[string]any {
	m, _ := r.value.(map[string]any)
	return m
}

// Get queries the body with a gjson path such as "review.versions.#".
func (r Result) Get(path string) gjson.Result {
	return gjson.GetBytes(r.raw, path)
}

// Decode unmarshals the body into v.
func (r Result) Decode(v any) error {
	return json.Unmarshal(r.raw, v)
}

// String returns the body as text.
func (r Result) String() string {
	return string(r.raw)
}
