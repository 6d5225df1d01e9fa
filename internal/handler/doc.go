// Package handler provides HTTP request handlers for the Aisle API.
//
// Each handler struct wraps one service (auth, profile, vendors, venues,
// seating, guests, budget, timeline, moodboards) and exposes one method per
// endpoint. Routes are registered in cmd/server.
//
// # Handler Pattern
//
//   - requireUser reads the caller from the auth middleware context
//   - decodeBody decodes JSON strictly (unknown fields are a 400)
//   - path ids may be bare keys ("abc") or full record ids ("guest:abc")
//   - service errors go through MapServiceError
//
// # Response Format
//
//   - WriteData: single resource with optional HATEOAS links
//   - WriteCollection: list with optional offset pagination
//   - WriteError: RFC 9457 Problem Details (application/problem+json)
//   - WriteNoContent: 204 for deletes
//
// Uploads (vendor media, floor plans, moodboard images, guest CSV) are
// multipart/form-data with the file under "file".
package handler
