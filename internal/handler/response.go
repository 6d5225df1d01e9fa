package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/forgo/aisle/api/internal/middleware"
	"github.com/forgo/aisle/api/internal/model"
	"github.com/forgo/aisle/api/internal/storage"
)

// maxJSONBody caps decoded request bodies
const maxJSONBody = 1 << 20

// multipartOverhead is the allowance for form boundaries and headers on uploads
const multipartOverhead = 64 << 10

// DataResponse wraps a successful response with optional HATEOAS links
type DataResponse struct {
	Data  interface{}       `json:"data"`
	Links map[string]string `json:"_links,omitempty"`
}

// CollectionResponse wraps a collection response with pagination
type CollectionResponse struct {
	Data       interface{}       `json:"data"`
	Pagination *PaginationInfo   `json:"pagination,omitempty"`
	Links      map[string]string `json:"_links,omitempty"`
}

// PaginationInfo contains offset pagination info
type PaginationInfo struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteData writes a successful data response
func WriteData(w http.ResponseWriter, status int, data interface{}, links map[string]string) {
	WriteJSON(w, status, DataResponse{Data: data, Links: links})
}

// WriteCollection writes a collection response with pagination
func WriteCollection(w http.ResponseWriter, status int, data interface{}, pagination *PaginationInfo, links map[string]string) {
	WriteJSON(w, status, CollectionResponse{Data: data, Pagination: pagination, Links: links})
}

// WriteError writes an error response using RFC 9457 Problem Details
func WriteError(w http.ResponseWriter, err *model.ProblemDetails) {
	err.WriteJSON(w)
}

// WriteNoContent writes a 204 No Content response
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// DecodeJSON decodes a JSON request body into the given struct
func DecodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// decodeBody decodes the request body, writing a 400 on failure
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := DecodeJSON(r, v); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body: "+err.Error()))
		return false
	}
	return true
}

// requireUser returns the caller's user id, writing a 401 when there is none
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return "", false
	}
	return userID, true
}

// recordID reads a path value as a record id of table. Clients may send
// either the bare key ("abc") or the full id ("guest:abc").
func recordID(r *http.Request, name, table string) string {
	return qualify(r.PathValue(name), table)
}

// qualify prefixes a bare key with its table name
func qualify(id, table string) string {
	if id == "" || strings.HasPrefix(id, table+":") {
		return id
	}
	return table + ":" + id
}

// pathIndex reads a non-negative integer path value
func pathIndex(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil || n < 0 {
		WriteError(w, model.NewBadRequestError(name+" must be a non-negative integer"))
		return 0, false
	}
	return n, true
}

// pagination reads limit and offset query parameters, falling back to
// def and capping limit at max
func pagination(r *http.Request, def, max int) (limit, offset int) {
	limit = def
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = min(l, max)
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o > 0 {
		offset = o
	}
	return limit, offset
}

// pageInfo reports a full page as possibly having more rows
func pageInfo(count, limit, offset int) *PaginationInfo {
	return &PaginationInfo{Limit: limit, Offset: offset, HasMore: count == limit}
}

// readUpload reads the named multipart file, enforcing maxBytes. It writes
// the error response itself and reports whether the caller may continue.
func readUpload(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) ([]byte, *multipartFile, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, model.NewPayloadTooLargeError(maxBytes))
			return nil, nil, false
		}
		WriteError(w, model.NewBadRequestError("expected a multipart/form-data body"))
		return nil, nil, false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		WriteError(w, model.NewValidationError([]model.FieldError{{Field: field, Message: "file is required"}}))
		return nil, nil, false
	}
	defer func() { _ = file.Close() }()

	if header.Size > maxBytes {
		WriteError(w, model.NewPayloadTooLargeError(maxBytes))
		return nil, nil, false
	}

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		WriteError(w, model.NewBadRequestError("could not read upload"))
		return nil, nil, false
	}
	if int64(len(data)) > maxBytes {
		WriteError(w, model.NewPayloadTooLargeError(maxBytes))
		return nil, nil, false
	}

	return data, &multipartFile{Name: header.Filename, Caption: formString(r, "caption")}, true
}

// readImageUpload is readUpload for the "file" field with the storage size cap
func readImageUpload(w http.ResponseWriter, r *http.Request) ([]byte, *multipartFile, bool) {
	return readUpload(w, r, "file", storage.MaxUploadBytes)
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// multipartFile describes an uploaded file and its form fields
type multipartFile struct {
	Name    string
	Caption *string
}

func formString(r *http.Request, key string) *string {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return nil
	}
	return &v
}
