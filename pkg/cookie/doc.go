// Package cookie provides HTTP cookie management with optional HMAC signing,
// and a per-request Jar that stores OAuth state in cookies.
//
// # Basic Usage
//
// Plain cookies work without a secret:
//
//	m := cookie.New()
//	m.Set(w, "theme", "dark", 86400)
//	value, err := m.Get(r, "theme")
//
// # With Secret
//
// Enable signing with a 32+ byte secret:
//
//	m := cookie.New(
//		cookie.WithSecret("your-32+-byte-secret-key-here!!"),
//		cookie.WithSecure(true),
//	)
//
//	err := m.SetSigned(w, "session", sessionID, 86400)
//	value, err := m.GetSigned(r, "session")
//
// The signature covers the cookie name and the value, so a value signed for one
// cookie is rejected under another name.
//
// # Jar
//
// Jar binds a Manager to one request/response pair and exposes Get/Set/Delete
// with context and TTL, matching oauth.StateStore:
//
//	url, err := driver.RedirectURL(r.Context(), m.Jar(w, r))
//
// Jar values are signed whenever the Manager has a secret. Missing or forged
// cookies read as an empty string.
//
// # Configuration
//
//   - [WithSecret]: Set the signing secret (32+ bytes, shorter ones are ignored)
//   - [WithDomain]: Set the cookie domain
//   - [WithPath]: Set the cookie path (default: "/")
//   - [WithSecure]: Set the Secure flag (HTTPS only)
//   - [WithHTTPOnly]: Set the HttpOnly flag (default: true)
//   - [WithSameSite]: Set the SameSite attribute (default: Lax)
//
// # Errors
//
//   - [ErrNotFound]: Cookie does not exist
//   - [ErrNoSecret]: Secret required for signed operations
//   - [ErrBadSig]: Signature verification failed (tampering detected)
package cookie
