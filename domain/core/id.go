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
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
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
	TestID        ID
	CalibrationID ID
)

func (id TestID) String() string        { return ID(id).String() }
func (id CalibrationID) String() string { return ID(id).String() }

// NewTestID creates an identifier for a single A/B comparison
func NewTestID() TestID { return TestID(NewID()) }

// NewCalibrationID creates an identifier for a calibration batch
func NewCalibrationID() CalibrationID { return CalibrationID(NewID()) }

// ParseTestID parses a string into TestID
func ParseTestID(s string) (TestID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("test ID cannot be empty")
	}
	return TestID(s), nil
}
