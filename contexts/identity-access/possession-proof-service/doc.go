// Package possessionproofservice implements two-phase possession
// proofs inside the identity-access context.
//
// The module issues coded challenges over a voter's email or phone,
// confirms them before a fixed deadline, expires the rest, and emits
// confirmation events the eligibility side consumes to flip
// verification flags.
package possessionproofservice
