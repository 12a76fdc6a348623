// Package mapping proposes and remembers assignments of raw column labels to
// the canonical roles date, product, price, quantity, category and customer.
//
// Detection is a pure function of the column labels and a few sample rows.
// Labels are normalized, compared against per-role keyword sets and, when
// several columns compete for a role, ranked by how well their sample values
// parse as that role. A result missing a mandatory role is returned as an
// incomplete Detection; Detection.Err turns it into *IncompleteMappingError
// for callers that need to stop and ask the user.
//
// Store remembers mappings confirmed by a user, keyed by a blake2b
// fingerprint of the normalized header, so later uploads with the same layout
// reuse the confirmed assignment.
package mapping
