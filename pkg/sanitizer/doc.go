// Package sanitizer normalizes operator and registrant input before it is
// validated or stored.
//
// All functions are idempotent and never fail: invalid input degrades to an
// empty string (or an empty slice) and the validators decide what to do with it.
//
// Normalization includes:
//   - Strings: collapse whitespace, trim leading/trailing spaces
//   - Room numbers: trimmed, inner spaces removed, upper-cased ("g 01" becomes "G01")
//   - Phone numbers: E.164, Indian numbers accepted without a country code
//   - Slices: remove duplicates and empty values after normalization
package sanitizer
