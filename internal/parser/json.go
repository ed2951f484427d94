package parser

import (
	"bytes"
	"encoding/json"
	stderrors "errors" // Standard errors package
	"fmt"
	"io"

	"github.com/buger/jsonparser"
	"github.com/rom111419/formtree/internal/errors"
	"github.com/rom111419/formtree/pkg/formtree"
	"github.com/rom111419/formtree/pkg/value"
)

// decodeJSON validates data and converts it into ordered values. Objects become
// *value.Object in document order, numbers stay json.Number.
func decodeJSON(data []byte) (any, error) {
	if err := checkJSON(data); err != nil {
		return nil, err
	}
	raw, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, errors.NewParsingError("failed to decode JSON", err)
	}
	return convertJSON(raw, dataType, nil)
}

// checkJSON reports syntax errors with their offset and rejects input holding more
// than one value.
func checkJSON(data []byte) error {
	if json.Valid(data) {
		return nil
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	var first json.RawMessage
	if err := decoder.Decode(&first); err != nil {
		var syntaxError *json.SyntaxError
		if stderrors.As(err, &syntaxError) {
			return errors.NewParsingError(
				fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
				errors.ErrInvalidJSON,
			)
		}
		if stderrors.Is(err, io.ErrUnexpectedEOF) {
			return errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
		}
		return errors.NewParsingError("failed to decode JSON", err)
	}

	// The first value is fine, so the problem is whatever follows it.
	var trailing json.RawMessage
	if err := decoder.Decode(&trailing); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil
		}
		return errors.NewParsingError("invalid trailing data after first JSON value", errors.ErrInvalidJSON)
	}
	return errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
}

func convertJSON(raw []byte, dataType jsonparser.ValueType, path formtree.Path) (any, error) {
	if len(path) > MaxNesting {
		return nil, errors.NewParsingError("document is nested too deeply",
			&formtree.MaxDepthExceededError{Path: path.String(), Limit: MaxNesting})
	}

	switch dataType {
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("invalid string at %s", path), err)
		}
		return s, nil
	case jsonparser.Number:
		return json.Number(raw), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("invalid boolean at %s", path), err)
		}
		return b, nil
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Array:
		return convertJSONArray(raw, path)
	case jsonparser.Object:
		return convertJSONObject(raw, path)
	}
	return nil, errors.NewParsingError(fmt.Sprintf("unexpected JSON value at %s", path), errors.ErrInvalidJSON)
}

func convertJSONArray(raw []byte, path formtree.Path) (any, error) {
	arr := make(value.Array, 0)
	var convErr error
	_, err := jsonparser.ArrayEach(raw, func(elem []byte, dataType jsonparser.ValueType, _ int, err error) {
		if convErr != nil {
			return
		}
		if err != nil {
			convErr = err
			return
		}
		v, err := convertJSON(elem, dataType, path.Index(len(arr)))
		if err != nil {
			convErr = err
			return
		}
		arr = append(arr, v)
	})
	if convErr != nil {
		return nil, convErr
	}
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("invalid array at %s", path), err)
	}
	return arr, nil
}

func convertJSONObject(raw []byte, path formtree.Path) (any, error) {
	obj := value.NewObject()
	// ObjectEach hands out keys already unescaped.
	err := jsonparser.ObjectEach(raw, func(key []byte, v []byte, dataType jsonparser.ValueType, _ int) error {
		name := string(key)
		child, err := convertJSON(v, dataType, path.Key(name))
		if err != nil {
			return err
		}
		obj.Set(name, child)
		return nil
	})
	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return nil, err
		}
		return nil, errors.NewParsingError(fmt.Sprintf("invalid object at %s", path), err)
	}
	return obj, nil
}
