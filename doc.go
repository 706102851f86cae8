// Package users implements a user-management backend: registration, login,
// JWT issuance and validation, and user/profile CRUD over Bun-backed
// repositories.
//
// Authentication flow:
//   - TokenService signs and validates HS256 tokens. Validation is pinned to
//     HMAC signing methods and returns discriminated failures (malformed,
//     expired, unsupported, invalid signature).
//   - Auther verifies credentials through an IdentityProvider and issues a
//     token on success. Unknown usernames and wrong passwords are
//     indistinguishable to callers.
//   - middleware/authgate guards protected routes: it extracts the bearer
//     token, validates it, reloads the principal's roles from the store, and
//     evaluates role predicates before handing control to the handler.
//
// Principals are derived per request and never cached; the credential store
// is the only source of truth for role membership.
package users
