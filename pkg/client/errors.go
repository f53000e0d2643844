package client

import "fmt"

// StatusError is returned when the endpoint answers with a non-2xx status.
// It is fatal for the run: a later run resumes safely from the persisted
// histories, so no in-request retry is attempted.
type StatusError struct {
	StatusCode int
	Status     string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("graphql endpoint returned %s", e.Status)
}
