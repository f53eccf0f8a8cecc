// Package auth is the authentication core of the OJTech job-matching
// platform: durable identities with role-based access, credential
// resolution, JWT issuance and validation, and a single failure mapper
// that turns any error raised during a request into a stable wire
// response.
//
// Identity resolution:
//   - Users are looked up by email first and by username second. The
//     ordering is a fixed contract; callers never learn which lookup
//     path matched, only that the identity exists or it does not.
//
// Request identity:
//   - The authenticated principal travels on the request context,
//     populated once by the JWT middleware. There is no ambient global
//     holder; downstream code calls PrincipalFromContext.
//
// OAuth2 provisioning lives in the oauth2 subpackage; Bun-backed
// repositories in this package provide the storage the flows consume.
package auth
