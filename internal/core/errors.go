package core

import "errors"

var (
	// ErrGenerationUnavailable marks an unreachable or failing generation
	// engine. Fatal for the current query; no partial answer is fabricated.
	ErrGenerationUnavailable = errors.New("generation engine unavailable")

	// ErrIndexUnavailable marks a semantic index that cannot serve the
	// current query or upsert.
	ErrIndexUnavailable = errors.New("semantic index unavailable")

	// ErrNoMatchingCourse means a course filter resolved to no known course
	// within the similarity floor. Tools absorb it into an explanatory
	// result; it never escalates past the coordinator.
	ErrNoMatchingCourse = errors.New("no matching course")
)
