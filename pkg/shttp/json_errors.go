package shttp

import (
	"encoding/json"
	"fmt"
)

// JSONError is the error structure returned by the InfluxDB API.
//
// Some endpoints wrap the underlying error in the "err" member; we keep a raw
// copy of it so that it can be decoded if necessary.

type JSONError struct {
	Code    string          `json:"code,omitempty"`
	Message string          `json:"message"`
	Op      string          `json:"op,omitempty"`
	RawErr  json.RawMessage `json:"err,omitempty"`
}

func (err *JSONError) Error() string {
	if err.Code == "" {
		return err.Message
	} else {
		return fmt.Sprintf("%s: %s", err.Code, err.Message)
	}
}

func (err *JSONError) DecodeErr(target interface{}) error {
	if err.RawErr == nil {
		return fmt.Errorf("missing or empty error data")
	}

	return json.Unmarshal(err.RawErr, target)
}
