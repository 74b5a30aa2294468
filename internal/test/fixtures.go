package test

import (
	"strings"

	"github.com/google/uuid"
)

// UniqueEmail returns an address that will not collide across tests.
func UniqueEmail(local string) string {
	return local + "+" + shortID() + "@example.com"
}

// Password returns a throwaway password of at least min characters.
func Password(min int) string {
	var b strings.Builder
	for b.Len() < min {
		b.WriteString(shortID())
	}
	return b.String()
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
