package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/lasmate/Alisee/internal/service"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body", service.ErrValidation)
	}
	return nil
}

// jsonObject keeps raw JSON values so admin endpoints can insist on numeric fields.
type jsonObject map[string]json.RawMessage

func decodeObject(w http.ResponseWriter, r *http.Request) (jsonObject, error) {
	var obj jsonObject
	if err := decodeJSON(w, r, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", service.ErrValidation)
	}
	return obj, nil
}

// Int reads key as a JSON integer. Strings, booleans and fractions are rejected.
func (o jsonObject) Int(key string) (int64, error) {
	raw, ok := o[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s is required", service.ErrValidation, key)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", service.ErrValidation, key)
	}
	num, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a number", service.ErrValidation, key)
	}
	n, err := num.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", service.ErrValidation, key)
	}
	return n, nil
}

// Flag reads key as 0, 1 or a JSON boolean.
func (o jsonObject) Flag(key string) (bool, error) {
	switch string(bytes.TrimSpace(o[key])) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	n, err := o.Int(key)
	if err != nil {
		return false, err
	}
	switch n {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("%w: %s must be 0 or 1", service.ErrValidation, key)
}

func (o jsonObject) String(key string) (string, error) {
	var s string
	if err := json.Unmarshal(o[key], &s); err != nil || s == "" {
		return "", fmt.Errorf("%w: %s must be a non-empty string", service.ErrValidation, key)
	}
	return s, nil
}

func queryID(r *http.Request, key string) (int64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, fmt.Errorf("%w: %s is required", service.ErrValidation, key)
	}
	return parseID(v)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", service.ErrValidation, s)
	}
	return id, nil
}
