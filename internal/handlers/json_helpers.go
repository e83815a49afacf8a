package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"time"
)

// maxBodyBytes bounds request bodies; a finalize payload with transcripts is the largest
const maxBodyBytes = 2 << 20

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// respondWithJSON writes payload as JSON. Nil slices are encoded as [] so
// frontends always receive arrays.
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(normalizeSlices(payload))
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorResponse{Error: message})
}

func respondWithErrorCode(w http.ResponseWriter, code int, errCode, message string) {
	respondWithJSON(w, code, errorResponse{Error: message, Code: errCode})
}

// decodeJSON decodes a bounded JSON request body into dst. An empty body
// leaves dst untouched when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return err
	}
	return nil
}

var timeType = reflect.TypeOf(time.Time{})

// normalizeSlices recursively replaces nil slices with empty ones
func normalizeSlices(data any) any {
	if data == nil {
		return nil
	}
	v := reflect.ValueOf(data)
	out := normalizeValue(v)
	if !out.IsValid() {
		return data
	}
	return out.Interface()
}

func normalizeValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() || v.Elem().Type() == timeType {
			return v
		}
		p := reflect.New(v.Elem().Type())
		p.Elem().Set(normalizeValue(v.Elem()))
		return p
	case reflect.Slice:
		if v.IsNil() {
			return reflect.MakeSlice(v.Type(), 0, 0)
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		s := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			s.Index(i).Set(normalizeValue(v.Index(i)))
		}
		return s
	case reflect.Struct:
		if v.Type() == timeType {
			return v
		}
		s := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			if !v.Type().Field(i).IsExported() {
				continue
			}
			s.Field(i).Set(normalizeValue(v.Field(i)))
		}
		return s
	default:
		return v
	}
}
