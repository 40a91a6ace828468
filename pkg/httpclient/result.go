package httpclient

import (
	"github.com/gonet/dgnet/pkg/jsonvalue"
)

// GenericListKey is the single key under which a top-level JSON array
// response is wrapped.
const GenericListKey = "genericList"

// Result is a decoded response body. Object responses map directly; array
// responses appear as {"genericList": [...]}.
type Result map[string]jsonvalue.Value

// Completion receives the outcome of an asynchronous request exactly once.
// errMsg is empty iff result is non-nil.
type Completion func(errMsg string, result Result)

// GenericList returns the wrapped array of an array response.
func (r Result) GenericList() ([]jsonvalue.Value, bool) {
	v, ok := r[GenericListKey]
	if !ok {
		return nil, false
	}
	return v.AsArray()
}

// Value returns r as a JSON object value.
func (r Result) Value() jsonvalue.Value {
	return jsonvalue.Object(r)
}

// StringField returns the string member stored under key.
func (r Result) StringField(key string) (string, bool) {
	return r[key].AsString()
}

// IntField returns the integral member stored under key.
func (r Result) IntField(key string) (int64, bool) {
	return r[key].Int64()
}

// decodeResult normalizes a response body into a Result.
func decodeResult(body []byte) (Result, error) {
	if len(body) == 0 {
		return nil, ErrEmptyBody
	}

	v, err := jsonvalue.Parse(body)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	switch v.Kind() {
	case jsonvalue.KindArray:
		return Result{GenericListKey: v}, nil
	case jsonvalue.KindObject:
		obj, _ := v.AsObject()
		return Result(obj), nil
	default:
		return nil, ErrShapeMismatch
	}
}
