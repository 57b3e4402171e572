// Package sanitizer normalizes user-supplied text before validation and storage.
//
// All functions are idempotent and handle bad input by returning empty values
// rather than errors; validators decide whether an empty result is acceptable.
//
// Normalization includes:
//   - Strings: collapse internal whitespace, trim the ends
//   - Room numbers: trimmed and upper-cased so "a-101" and "A-101" collide
//   - Phone numbers: E.164 via libphonenumber, parsed against a default region
//   - URLs: enforce a scheme, lowercase the host
//   - Slices: drop empties and case-insensitive duplicates after normalization
package sanitizer
