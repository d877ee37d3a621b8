package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new unique identifier string
func GenerateID() string {
	return uuid.New().String()
}

// GeneratePrefixedID returns a unique identifier namespaced like "order_<uuid>"
func GeneratePrefixedID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}
