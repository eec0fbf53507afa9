package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ApplyOverrides returns a copy of base with the JSON object overrides
// merged in. Nested objects merge key by key; any other value, arrays
// included, replaces the base value. An empty document returns base
// unchanged.
func ApplyOverrides(base *Config, overrides string) (*Config, error) {
	if strings.TrimSpace(overrides) == "" {
		return base, nil
	}
	if !gjson.Valid(overrides) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidOverrides)
	}
	doc := gjson.Parse(overrides)
	if !doc.IsObject() {
		return nil, ErrInvalidOverrides
	}

	merged, err := json.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("encoding base config: %w", err)
	}
	merged, err = mergeObject(merged, "", doc)
	if err != nil {
		return nil, err
	}

	out := &Config{}
	dec := json.NewDecoder(bytes.NewReader(merged))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOverrides, err)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func mergeObject(dst []byte, prefix string, obj gjson.Result) ([]byte, error) {
	var err error
	obj.ForEach(func(key, value gjson.Result) bool {
		path := escapePath(key.String())
		if prefix != "" {
			path = prefix + "." + path
		}
		if value.IsObject() && gjson.GetBytes(dst, path).IsObject() {
			dst, err = mergeObject(dst, path, value)
		} else {
			dst, err = sjson.SetRawBytes(dst, path, []byte(value.Raw))
		}
		return err == nil
	})
	return dst, err
}

var pathEscaper = strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)

func escapePath(key string) string {
	return pathEscaper.Replace(key)
}

// OverrideValue reads a single dotted path from an override document.
// The second result is false when the path is absent.
func OverrideValue(overrides, path string) (string, bool) {
	r := gjson.Get(overrides, path)
	if !r.Exists() {
		return "", false
	}
	return r.Raw, true
}

// SetOverride returns overrides with path set to the JSON value raw.
func SetOverride(overrides, path, raw string) (string, error) {
	if strings.TrimSpace(overrides) == "" {
		overrides = "{}"
	}
	return sjson.SetRaw(overrides, path, raw)
}
