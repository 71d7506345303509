package transport

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/dmitrijs2005/imgdrop/internal/models"
)

// Extractor looks for a public URL in a response body.
type Extractor interface {
	Extract(body []byte) (string, bool)
}

type ExtractorFunc func(body []byte) (string, bool)

func (f ExtractorFunc) Extract(body []byte) (string, bool) { return f(body) }

// DefaultExtractors is the order webhook responses are tried in.
var DefaultExtractors = []Extractor{
	JSONFields("publicUrl", "url", "link", "data.url"),
	ExtractorFunc(jsonStringURL),
	ExtractorFunc(plainTextURL),
}

// JSONFields matches the first non-empty string found at one of the dotted
// paths of a JSON object body.
func JSONFields(paths ...string) Extractor {
	return ExtractorFunc(func(body []byte) (string, bool) {
		var obj map[string]any
		if err := json.Unmarshal(body, &obj); err != nil {
			return "", false
		}
		for _, p := range paths {
			if s, ok := lookup(obj, strings.Split(p, ".")); ok {
				return s, true
			}
		}
		return "", false
	})
}

func lookup(obj map[string]any, path []string) (string, bool) {
	v, ok := obj[path[0]]
	if !ok {
		return "", false
	}
	if len(path) == 1 {
		s, ok := v.(string)
		return s, ok && s != ""
	}
	next, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	return lookup(next, path[1:])
}

func jsonStringURL(body []byte) (string, bool) {
	var s string
	if err := json.Unmarshal(body, &s); err != nil {
		return "", false
	}
	if !strings.Contains(s, "http") {
		return "", false
	}
	return s, true
}

func plainTextURL(body []byte) (string, bool) {
	if json.Valid(body) {
		return "", false
	}
	text := string(bytes.TrimSpace(body))
	if !strings.HasPrefix(text, "http") {
		return "", false
	}
	return text, true
}

// ParseResponse runs extractors in order. Well-formed JSON with no usable
// URL (object, array, number, bool) yields models.URLNotFound. A bare JSON
// string without a URL, null, and anything that is not JSON are
// ErrResponseUnparseable.
func ParseResponse(body []byte, extractors []Extractor) (string, error) {
	for _, ex := range extractors {
		if url, ok := ex.Extract(body); ok {
			return url, nil
		}
	}

	var v any
	if err := json.Unmarshal(body, &v); err == nil && v != nil {
		if _, isString := v.(string); !isString {
			return models.URLNotFound, nil
		}
	}
	return "", newUploadError(ErrResponseUnparseable, ErrResponseUnparseable.Error(), nil)
}
