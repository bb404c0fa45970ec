// Package voteledger implements the ballot ledger inside the
// election-core context.
//
// The module owns candidates, the one-ballot-per-voter cast path, result
// aggregation, recount audits, and ballot event production through an
// outbox-backed relay. Eligibility is consulted through a port; the
// ledger never reads voter profiles directly.
package voteledger
