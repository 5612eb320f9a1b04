package llm

// Parse recovers a schema-typed value from raw model output. The pipeline is
// normalize → extract → unescape → validate; each stage only sees the output
// of the previous one, and the whole thing is pure over its inputs.
//
// Failures are always a *ParsingError carrying the original text:
// UnsupportedShape when the schema's root shape is outside the closed enum,
// NoCandidateFound / MalformedJSON from extraction, and
// SchemaValidationFailed when the value does not match the schema.
func Parse[T any](text string, schema Schema[T]) (T, error) {
	var zero T
	if schema == nil {
		return zero, newParsingError(UnsupportedShape, text, nil)
	}
	shape := schema.Shape()
	if !shape.supported() {
		return zero, newParsingError(UnsupportedShape, text, nil)
	}

	extracted, err := extractValue(normalizeText(text), shape)
	if err != nil {
		if pe, ok := err.(*ParsingError); ok {
			pe.Raw = text
		}
		return zero, err
	}

	validated, err := schema.Validate(unescapeStrings(extracted))
	if err != nil {
		return zero, newParsingError(SchemaValidationFailed, text, err)
	}
	return validated, nil
}
