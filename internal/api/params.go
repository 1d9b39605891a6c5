package api

import (
	"net/url"
	"strconv"
	"strings"
)

// Params collects query or form parameters. Zero values are skipped so that
// optional fields left unset never reach the wire.
type Params url.Values

// Set stores a non-empty string.
func (p Params) Set(key, value string) {
	if value != "" {
		url.Values(p).Set(key, value)
	}
}

// SetInt stores a non-zero integer.
func (p Params) SetInt(key string, n int) {
	if n != 0 {
		url.Values(p).Set(key, strconv.Itoa(n))
	}
}

// SetBool stores "true" when b is set.
func (p Params) SetBool(key string, b bool) {
	if b {
		url.Values(p).Set(key, "true")
	}
}

// SetFlag stores "1" or "0" for an explicitly given boolean.
func (p Params) SetFlag(key string, b *bool) {
	if b == nil {
		return
	}
	if *b {
		url.Values(p).Set(key, "1")
	} else {
		url.Values(p).Set(key, "0")
	}
}

// SetJoined stores items comma-joined, e.g. fields=id,author.
func (p Params) SetJoined(key string, items []string) {
	if len(items) > 0 {
		url.Values(p).Set(key, strings.Join(items, ","))
	}
}

// Add appends values under key as given.
func (p Params) Add(key string, values ...string) {
	for _, v := range values {
		url.Values(p).Add(key, v)
	}
}

// AddList repeats key with a "[]" suffix for every item, e.g. state[]=open.
func (p Params) AddList(key string, items []string) {
	for _, item := range items {
		url.Values(p).Add(key+"[]", item)
	}
}

// AddInts is AddList for integer items.
func (p Params) AddInts(key string, items []int) {
	for _, n := range items {
		url.Values(p).Add(key+"[]", strconv.Itoa(n))
	}
}

// Values returns the collected parameters, or nil when there are none.
func (p Params) Values() url.Values {
	if len(p) == 0 {
		return nil
	}
	return url.Values(p)
}
