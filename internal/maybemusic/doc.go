// Package maybemusic defines the candidate music clip records produced from
// CSV input and the stricter Music form used when validating them.
//
// MaybeMusic mirrors one CSV row: required identifiers are plain strings and
// numeric columns use Optional so "absent" never collapses into a zero value.
// Music is the validated shape with a parsed timestamp, a known Platform, and
// a required status. Hash reproduces the clip digest used to name archive
// outputs, so its inputs and formatting must stay stable.
package maybemusic
