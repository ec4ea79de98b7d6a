package http_gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"

	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"
	pb "go.storefront.dev/core/protocol"
	"go.storefront.dev/core/store"
)

// errorEnvelope is the JSON presentation of every API error.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// validationDetail is a detail of a VALIDATION_ERROR.
type validationDetail struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Errors of request decoding.
var (
	errBadJSON         = pb.NewAPIError(http.StatusBadRequest, pb.CodeBadJSON, "Malformed JSON")
	errPayloadTooLarge = pb.NewAPIError(http.StatusRequestEntityTooLarge, pb.CodePayloadTooLarge, "Payload Too Large")
	errNotFound        = pb.NewAPIError(http.StatusNotFound, pb.CodeNotFound, "Not Found")
	errMethod          = pb.NewAPIError(http.StatusMethodNotAllowed, pb.CodeMethodNotAllowed, "Method Not Allowed")
)

// writeError maps |err| to an HTTP status and error envelope.
func (g *Gateway) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *pb.APIError
	var body errorBody
	var status int

	if errors.As(err, &apiErr) {
		status, body = apiErr.Status, errorBody{Message: apiErr.Message, Code: apiErr.Code, Details: apiErr.Details}
	} else if verrs, ok := pb.AsValidationErrors(err); ok {
		var details = make([]validationDetail, len(verrs))
		for i, ve := range verrs {
			details[i] = validationDetail{Path: ve.Path(), Message: ve.Message()}
		}
		status, body = http.StatusBadRequest, errorBody{Message: "Validation failed", Code: pb.CodeValidation, Details: details}
	} else if err == store.ErrDuplicate {
		status, body = http.StatusConflict, errorBody{Message: "Duplicate key", Code: pb.CodeDuplicate}
	} else {
		status, body = http.StatusInternalServerError, errorBody{Message: "Internal Server Error", Code: pb.CodeInternal}

		if !g.cfg.Production {
			body.Details = map[string]string{"message": err.Error()}
		}
		if r.Context().Err() != nil || errors.Is(err, context.Canceled) {
			// Request was aborted by client.
			log.WithField("err", err).Debug("http_gateway: request canceled")
		} else {
			log.WithFields(log.Fields{
				"err":    err,
				"method": r.Method,
				"path":   r.URL.Path,
			}).Warn("http_gateway: failed to serve request")
		}
	}
	writeJSON(w, status, errorEnvelope{Error: body})
}

// writeJSON writes |v| as a JSON response of |status|.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithField("err", err).Debug("http_gateway: failed to write response")
	}
}

// decodeJSON decodes the JSON body of |r| into |v|. An empty body leaves |v|
// unchanged, and anything but whitespace after the value is malformed.
// Unknown fields are ignored, and fields of the wrong JSON type are
// returned as ValidationErrors.
func (g *Gateway) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	var dec = json.NewDecoder(http.MaxBytesReader(w, r.Body, g.cfg.MaxBodyBytes))
	var err = dec.Decode(v)

	if err == io.EOF {
		return nil
	} else if err == nil {
		// Only whitespace may follow the decoded value.
		if _, err = dec.Token(); err == io.EOF {
			return nil
		} else if err == nil {
			return errBadJSON
		}
	}

	var typeErr *json.UnmarshalTypeError
	var sizeErr *http.MaxBytesError

	if errors.As(err, &sizeErr) {
		return errPayloadTooLarge
	} else if errors.As(err, &typeErr) {
		return pb.ValidationErrors{{
			Context: []string{typeErr.Field},
			Err:     fmt.Errorf("Expected %s, received %s", jsonKind(typeErr.Type), typeErr.Value),
		}}
	}
	return errBadJSON
}

// decodeQuery decodes URL query parameters of |r| into |v|, which must be a
// pointer to a struct having `schema` tags. Unknown parameters are ignored.
func (g *Gateway) decodeQuery(r *http.Request, v interface{}) error {
	var err = g.decoder.Decode(v, r.URL.Query())

	var multi schema.MultiError
	if err == nil {
		return nil
	} else if !errors.As(err, &multi) {
		return pb.ValidationErrors{{Err: err}}
	}

	var keys = make([]string, 0, len(multi))
	for k := range multi {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out pb.ValidationErrors
	for _, k := range keys {
		var convErr schema.ConversionError
		if errors.As(multi[k], &convErr) {
			out.Addf(k, "Expected %s, received string", jsonKind(convErr.Type))
		} else {
			out.Add(k, multi[k])
		}
	}
	return out
}

// jsonKind returns the JSON (or schema) name of the kind of type |t|.
func jsonKind(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}
