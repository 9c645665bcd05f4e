package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	CaptureID  ID
	SessionID  ID
	ArtifactID ID
	DeviceID   ID
)

// String conversions for domain IDs
func (id CaptureID) String() string  { return ID(id).String() }
func (id SessionID) String() string  { return ID(id).String() }
func (id ArtifactID) String() string { return ID(id).String() }
func (id DeviceID) String() string   { return ID(id).String() }

// ParseCaptureID parses a string into CaptureID
func ParseCaptureID(s string) (CaptureID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("capture ID cannot be empty")
	}
	return CaptureID(s), nil
}

// ParseSessionID parses a string into SessionID
func ParseSessionID(s string) (SessionID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	return SessionID(s), nil
}

// ParseDeviceID parses a string into DeviceID
func ParseDeviceID(s string) (DeviceID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("device ID cannot be empty")
	}
	return DeviceID(s), nil
}
