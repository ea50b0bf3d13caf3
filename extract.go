package opwatch

import (
	"encoding/json"
	"strconv"
	"strings"
)

// MetadataField is a function that pulls a display value out of an
// operation's metadata payload.
//
// MetadataField follows functional programming principles: it is a pure
// function where the same input always produces the same output. The
// second return value reports whether the field was present; extraction
// never fails loudly, since metadata shape is backend-defined and
// progress display is cosmetic.
//
// Use [JSONField] for the common case of JSON metadata.
type MetadataField func(metadata []byte) (string, bool)

// JSONField returns a [MetadataField] that extracts a value from JSON
// metadata using dot notation to navigate nested objects.
//
// The path parameter specifies the field to extract. For example,
// "progress.percentDone" navigates {"progress": {"percentDone": 42}}.
//
// String values are returned as-is; booleans and numbers are converted to
// their usual string forms. Returns ("", false) if the metadata is not
// valid JSON, the path does not exist, or the value is an object or array.
//
// Example:
//
//	pct := opwatch.JSONField("progressPercent")
//	poller, _ := opwatch.New(pollFn,
//	    opwatch.WithProgress(func(op *opwatch.Operation) {
//	        if v, ok := pct(op.Metadata); ok {
//	            logger.Info("operation progress", "percent", v)
//	        }
//	    }),
//	)
func JSONField(path string) MetadataField {
	parts := strings.Split(path, ".")

	return func(metadata []byte) (string, bool) {
		if len(metadata) == 0 {
			return "", false
		}

		var data interface{}
		if err := json.Unmarshal(metadata, &data); err != nil {
			return "", false
		}

		return walkJSONPath(data, parts)
	}
}

// walkJSONPath walks a decoded JSON structure using dot notation parts.
func walkJSONPath(data interface{}, parts []string) (string, bool) {
	current := data

	for _, part := range parts {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return "", false
		}
		current, ok = obj[part]
		if !ok {
			return "", false
		}
	}

	switch v := current.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}
