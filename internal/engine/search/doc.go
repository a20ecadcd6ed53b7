// Package search finds literal matches in a document and tracks the
// navigable match list behind a find/replace bar.
//
// FindMatches scans lines left to right for non-overlapping occurrences.
// Large documents are split into contiguous line chunks that are scanned in
// parallel and joined in chunk order, so the result is identical to a serial
// scan. Case-insensitive search folds each character on its own, which keeps
// match columns valid in the original text.
//
// Session holds the find bar state: query, replacement, case flag, the match
// list and the current match.
package search
