// Copyright (c) 2016-2026 The libufec developers. All rights reserved.
// Project site: https://github.com/BabyMINDdaq/libufec
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package descriptor

import "fmt"

// Severity grades a descriptor error.
type Severity int

// Severities of descriptor errors.
const (
	Warning Severity = iota
	Serious
	Fatal
)

var severities = map[Severity]string{
	Warning: "WARNING",
	Serious: "SERIOUS ERROR",
	Fatal:   "FATAL ERROR",
}

func (s Severity) String() string {
	return severities[s]
}

// Error reports a descriptor that cannot be loaded or a value it rejects.
type Error struct {
	Description string
	Location    string
	Severity    Severity
}

func (e *Error) Error() string {
	return fmt.Sprintf("*** %s *** ( %s in %s )", e.Description, e.Severity, e.Location)
}

// missingMember builds the error for an absent compulsory member of doc.
func missingMember(location string, doc object, key string) *Error {
	msg := fmt.Sprintf("Compulsory member >>%s<< is missing in the json configuration!", key)
	if name, ok := doc.name(); ok {
		msg = fmt.Sprintf("When reading %s %s", name, msg)
	}
	return &Error{Description: msg, Location: location, Severity: Fatal}
}
