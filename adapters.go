package ioc

import "fmt"

// errMismatchedType reports a registration source producing a value that
// does not assert to the Go type its wrapper promised — a sign of two
// registrations for the same Service disagreeing about what they produce.
func errMismatchedType(service Service, got any) error {
	return fmt.Errorf("ioc: resolved value for %s has unexpected type %T", service, got)
}
