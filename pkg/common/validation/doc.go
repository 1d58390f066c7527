// Package validation provides common validation utilities for arguments and
// configuration parameters across the cocaine-framework-go packages.
//
// This package offers reusable validation functions that help ensure
// consistent error messages and reduce boilerplate code in constructors
// and blocking calls such as Pipeline.GetWithTimeout.
package validation
