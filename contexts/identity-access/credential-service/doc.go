// Package credentialservice implements voter sign-in inside the
// identity-access context.
//
// The module stores bcrypt-hashed login credentials, issues HS256
// access tokens, and delegates voter profile creation to its owning
// module through a port.
package credentialservice
