package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const slugAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewSlug returns a random URL-safe share slug.
func NewSlug() (string, error) {
	return gonanoid.Generate(slugAlphabet, 10)
}
