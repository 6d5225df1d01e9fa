// Package middleware provides HTTP middleware for the Aisle API.
//
// Every middleware has the signature func(http.Handler) http.Handler and is
// composed with Chain, outermost first:
//
//	handler := middleware.Chain(mux,
//	    middleware.Recovery,
//	    middleware.RequestID,
//	    middleware.Logger,
//	    middleware.Metrics,
//	)
//
// # Authentication
//
// Auth validates the bearer access token and stores the user ID, email and
// role in the request context. Event streams may send the token as the
// access_token query parameter. RequireRole restricts a route to account
// roles and must run after Auth:
//
//	admin := middleware.Chain(h, middleware.Auth(tokens), middleware.RequireRole(model.UserRoleAdmin))
//
// Handlers read the caller with GetUserID, GetUserRole and GetClaims.
//
// # Rate Limiting
//
// RateLimiter is a token bucket keyed by user ID, or client IP for anonymous
// requests. With a Redis client the buckets are shared by every instance;
// if Redis is unreachable the in-process bucket is used.
//
// # Idempotency
//
// Idempotency replays the first 2xx response for a repeated Idempotency-Key
// on POST and PATCH. A key reused with a different request body is a 409.
package middleware
