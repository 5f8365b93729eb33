// Package utils holds small helpers shared across the application.
package utils

import (
	"strings"

	"github.com/google/uuid"
)

// DocIDGenerator issues ids for documents saved without one.
//
// Ids are UUIDv7 in lower-case hex without hyphens: they sort by creation
// time and contain only characters the document validator accepts.
type DocIDGenerator struct{}

// NewDocIDGenerator returns a ready generator.
func NewDocIDGenerator() DocIDGenerator {
	return DocIDGenerator{}
}

// Generate returns a fresh id. If the time-ordered variant is unavailable
// a random (v4) id is used.
func (DocIDGenerator) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return strings.ReplaceAll(id.String(), "-", "")
}
