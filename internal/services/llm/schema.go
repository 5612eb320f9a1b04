package llm

import (
	"encoding/json"
	"fmt"
	"math"
)

// Shape is the top-level JSON kind a schema expects at its root. It is a
// closed enum: extraction dispatches on it with a plain switch, and anything
// outside the enum is rejected before extraction is attempted.
type Shape int

const (
	ShapeObject Shape = iota
	ShapeArray
	ShapeString
	ShapeNumber
	ShapeBoolean
	ShapeNull
)

func (s Shape) String() string {
	switch s {
	case ShapeObject:
		return "object"
	case ShapeArray:
		return "array"
	case ShapeString:
		return "string"
	case ShapeNumber:
		return "number"
	case ShapeBoolean:
		return "boolean"
	case ShapeNull:
		return "null"
	default:
		return "unknown"
	}
}

func (s Shape) supported() bool {
	switch s {
	case ShapeObject, ShapeArray, ShapeString, ShapeNumber, ShapeBoolean, ShapeNull:
		return true
	default:
		return false
	}
}

// Schema turns an untyped extracted value into a typed one. Validate must
// reject structural mismatches; it never repairs the value.
type Schema[T any] interface {
	Shape() Shape
	Validate(v any) (T, error)
}

// Object returns a schema that validates an extracted JSON object against T.
func Object[T any]() Schema[T] {
	return structSchema[T]{shape: ShapeObject}
}

// Array returns a schema that validates an extracted JSON array whose
// elements match E.
func Array[E any]() Schema[[]E] {
	return structSchema[[]E]{shape: ShapeArray}
}

// structSchema round-trips the untyped value through encoding/json so that
// type mismatches surface as unmarshal errors.
type structSchema[T any] struct {
	shape Shape
}

func (s structSchema[T]) Shape() Shape { return s.shape }

func (s structSchema[T]) Validate(v any) (T, error) {
	var out T
	b, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("encode extracted value: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, err
	}
	return out, nil
}

// String returns a schema for a root-level JSON string.
func String() Schema[string] { return stringSchema{} }

type stringSchema struct{}

func (stringSchema) Shape() Shape { return ShapeString }

func (stringSchema) Validate(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return s, nil
}

// Number returns a schema for a root-level JSON number.
func Number() Schema[float64] { return numberSchema{} }

type numberSchema struct{}

func (numberSchema) Shape() Shape { return ShapeNumber }

func (numberSchema) Validate(v any) (float64, error) {
	n, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("expected number, got %T", v)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("expected finite number, got %v", n)
	}
	return n, nil
}

// Boolean returns a schema for a root-level JSON boolean.
func Boolean() Schema[bool] { return boolSchema{} }

type boolSchema struct{}

func (boolSchema) Shape() Shape { return ShapeBoolean }

func (boolSchema) Validate(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
	return b, nil
}

// Null returns a schema for a root-level JSON null.
func Null() Schema[any] { return nullSchema{} }

type nullSchema struct{}

func (nullSchema) Shape() Shape { return ShapeNull }

func (nullSchema) Validate(v any) (any, error) {
	if v != nil {
		return nil, fmt.Errorf("expected null, got %T", v)
	}
	return nil, nil
}
