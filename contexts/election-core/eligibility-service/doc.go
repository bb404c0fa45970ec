// Package eligibilityservice implements voter eligibility inside the
// election-core context.
//
// The module owns voter profiles, possession-proof derived verification
// levels, id-document review, and the eligibility decision other modules
// consult before accepting a ballot. It keeps business rules in
// application/domain layers and isolates infrastructure concerns behind
// ports and adapters.
package eligibilityservice
