// Package ids generates prefixed, time ordered identifiers ("ride_01h2xcejqtf2nbrexx3vqjhp41").
package ids

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

type Prefix string

const PrefixRide Prefix = "ride"

// New generates an id with the given prefix. It panics on an invalid prefix.
func New(prefix Prefix) string {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("ids: invalid prefix %q: %v", prefix, err))
	}
	return tid.String()
}

func NewRideID() string {
	return New(PrefixRide)
}

// Validate checks that s is a well formed id carrying the expected prefix.
func Validate(s string, expected Prefix) error {
	if s == "" {
		return fmt.Errorf("ids: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return fmt.Errorf("ids: parse %q: %w", s, err)
	}
	if Prefix(tid.Prefix()) != expected {
		return fmt.Errorf("ids: expected prefix %q, got %q", expected, tid.Prefix())
	}
	return nil
}
