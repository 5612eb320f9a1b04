package llm

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// extractValue locates and parses the JSON substring of the expected shape
// within noisy text. For arrays and objects it scans from the first opening
// bracket to the last closing one; models tend to surround JSON with prose,
// and this heuristic survives that at the cost of mis-slicing when multiple
// independent values of the same shape appear (a known limitation).
func extractValue(text string, shape Shape) (any, error) {
	switch shape {
	case ShapeArray:
		return extractBracketed(text, '[', ']')
	case ShapeObject:
		return extractBracketed(text, '{', '}')
	case ShapeString, ShapeNumber, ShapeBoolean, ShapeNull:
		return extractPrimitive(text, shape), nil
	default:
		return nil, newParsingError(UnsupportedShape, text, nil)
	}
}

func extractBracketed(text string, open, close byte) (any, error) {
	start := strings.IndexByte(text, open)
	if start < 0 {
		return nil, newParsingError(NoCandidateFound, text, nil)
	}
	// A candidate that opens but never closes still counts as found; the JSON
	// parse below reports it as malformed rather than missing.
	candidate := text[start:]
	if end := strings.LastIndexByte(text, close); end > start {
		candidate = text[start : end+1]
	}
	var v any
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return nil, newParsingError(MalformedJSON, text, err)
	}
	return v, nil
}

// extractPrimitive is total over the supported primitive shapes: a value that
// is not valid JSON is coerced from the raw literal, and coercion misses are
// left for schema validation to reject.
func extractPrimitive(text string, shape Shape) any {
	trimmed := strings.TrimSpace(text)
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
		if shape == ShapeNull {
			return nil
		}
		return v
	}
	switch shape {
	case ShapeString:
		return trimmed
	case ShapeNumber:
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return n
	case ShapeBoolean:
		b, err := strconv.ParseBool(strings.ToLower(trimmed))
		if err != nil {
			return trimmed
		}
		return b
	default: // ShapeNull
		return nil
	}
}
