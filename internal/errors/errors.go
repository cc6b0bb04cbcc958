// Package errors provides standardized error types for the deckhand CLI.
//
// OpError is the primary error type, carrying a code that categorizes the
// failure (NOT_FOUND, DNS, FIREWALL, ...), an optional resource name (a
// domain, a container, a unit), and an optional wrapped cause.
//
// Sentinel errors exist for the common cases and compare by code:
//
//	if errors.Is(err, errors.ErrSiteNotFound) { ... }
//
// Use errors.As to recover the code for JSON output:
//
//	var opErr *errors.OpError
//	if errors.As(err, &opErr) {
//	    fmt.Println(opErr.Code)
//	}
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes errors for programmatic handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"      // Resource not found
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS" // Resource already exists
	ErrCodeValidation    ErrorCode = "VALIDATION"     // Input validation failed
	ErrCodePermission    ErrorCode = "PERMISSION"     // Permission denied
	ErrCodeConfig        ErrorCode = "CONFIG"         // Configuration error
	ErrCodeProxy         ErrorCode = "PROXY"          // Reverse proxy driver error
	ErrCodeCert          ErrorCode = "CERT"           // Certificate issuance/renewal error
	ErrCodeDNS           ErrorCode = "DNS"            // DNS provider error
	ErrCodeFirewall      ErrorCode = "FIREWALL"       // Firewall adapter error
	ErrCodeDocker        ErrorCode = "DOCKER"         // Docker adapter error
	ErrCodeService       ErrorCode = "SERVICE"        // Service supervisor error
	ErrCodeInternal      ErrorCode = "INTERNAL"       // Internal/unexpected error
)

// OpError represents a structured error with context about the operation.
type OpError struct {
	Code     ErrorCode // Error category
	Message  string    // Human-readable message
	Resource string    // Resource name: domain, container, unit (if applicable)
	Err      error     // Underlying error (if any)
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Resource != "" && e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Resource, e.Message, e.Err)
	}
	if e.Resource != "" {
		return fmt.Sprintf("%s: %s", e.Resource, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for error chain traversal.
func (e *OpError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
// Comparison is based on error code.
func (e *OpError) Is(target error) bool {
	t, ok := target.(*OpError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors for common error scenarios.
var (
	// ErrSiteNotFound indicates the requested site does not exist.
	ErrSiteNotFound = &OpError{Code: ErrCodeNotFound, Message: "site not found"}

	// ErrSiteExists indicates a site with the same domain already exists.
	ErrSiteExists = &OpError{Code: ErrCodeAlreadyExists, Message: "site already exists"}

	// ErrInvalidDomain indicates the domain name is not valid.
	ErrInvalidDomain = &OpError{Code: ErrCodeValidation, Message: "invalid domain"}

	// ErrInvalidSiteType indicates the site type is not valid.
	ErrInvalidSiteType = &OpError{Code: ErrCodeValidation, Message: "invalid site type"}

	// ErrRootRequired indicates root privileges are required.
	ErrRootRequired = &OpError{Code: ErrCodePermission, Message: "root privileges required"}

	// ErrConfigInvalid indicates the configuration is invalid or corrupt.
	ErrConfigInvalid = &OpError{Code: ErrCodeConfig, Message: "invalid configuration"}

	// ErrDriverNotFound indicates the specified proxy driver is not available.
	ErrDriverNotFound = &OpError{Code: ErrCodeProxy, Message: "driver not found"}

	// ErrRecordNotFound indicates the DNS record does not exist at the provider.
	ErrRecordNotFound = &OpError{Code: ErrCodeNotFound, Message: "dns record not found"}

	// ErrCertbotNotInstalled indicates the certbot binary is missing.
	ErrCertbotNotInstalled = &OpError{Code: ErrCodeCert, Message: "certbot not installed"}

	// ErrDockerUnavailable indicates the docker daemon cannot be reached.
	ErrDockerUnavailable = &OpError{Code: ErrCodeDocker, Message: "docker daemon unavailable"}

	// ErrNoPublishedPort indicates a container exposes no host port to proxy to.
	ErrNoPublishedPort = &OpError{Code: ErrCodeDocker, Message: "container has no published port"}
)

// NotFound creates an error for a site that doesn't exist.
func NotFound(domain string) error {
	return &OpError{
		Code:     ErrCodeNotFound,
		Message:  "site not found",
		Resource: domain,
	}
}

// AlreadyExists creates an error for a site that already exists.
func AlreadyExists(domain string) error {
	return &OpError{
		Code:     ErrCodeAlreadyExists,
		Message:  "site already exists",
		Resource: domain,
	}
}

// Validation creates a validation error with a custom message.
func Validation(msg string) error {
	return &OpError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// Wrap creates an error with the specified code, message, and underlying error.
func Wrap(code ErrorCode, msg string, err error) error {
	return &OpError{
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

// WrapResource creates an error with resource context and underlying error.
func WrapResource(code ErrorCode, resource, msg string, err error) error {
	return &OpError{
		Code:     code,
		Message:  msg,
		Resource: resource,
		Err:      err,
	}
}

// Is reports whether any error in err's chain matches target.
// This is a re-export of errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// This is a re-export of errors.As for convenience.
var As = errors.As
