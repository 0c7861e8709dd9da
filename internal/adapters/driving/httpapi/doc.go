// Package httpapi exposes the clientdesk services over HTTP using fiber.
//
// Browser sessions are HS256 JWTs carried in the clientdesk_session cookie or
// an Authorization bearer header. All /api/v1 routes except health require a
// session and act on the signed-in user's data only.
package httpapi
