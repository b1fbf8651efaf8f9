// Package json is a thin indirection over the json implementation used by
// this module, so the encoder can be swapped without touching call sites.
package json

import (
	stdjson "encoding/json"

	jsoniter "github.com/json-iterator/go"
)

var compat = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	Marshal   = compat.Marshal
	Unmarshal = compat.Unmarshal
)

type RawMessage = stdjson.RawMessage
