// Package token decodes the bearer credentials the session middleware
// consumes: signature-verified first-party credentials carrying the user
// identity, and unverified expiry extraction for forwarded third-party
// access tokens where the expiry claim is informational only.
package token
