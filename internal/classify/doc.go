// Package classify maps validation errors from a pension calculator error summary
// onto the analytics taxonomy used for failure reporting.
//
// Every error is reduced to three tags:
//
//	family  what kind of field failed (amount, date, radio)
//	page    which form page the field lives on
//	type    why it failed, read from the validation message
//
// Each tag is resolved by an ordered rule table evaluated top-down; the first
// matching rule wins and the final rule of every table always matches, so
// classification cannot fail. The page table lists longer identifiers before
// the shorter identifiers they contain ("pensionsTakenBefore" ahead of
// "pensionsTaken").
//
// The type rules match human-readable message wording. A change to the
// validation messages on the form side silently moves errors into the
// "mandatory" fallback.
package classify
