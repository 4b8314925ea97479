package aws

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
)

type ErrorCategory string

// Error categories for the plan table
const (
	// ErrResourceNotFound is returned when the table or index doesn't exist
	ErrResourceNotFound ErrorCategory = "resource_not_found"

	// ErrPermissionDenied is returned when DynamoDB access is denied
	ErrPermissionDenied ErrorCategory = "permission_denied"

	// ErrThrottling is returned when DynamoDB throttles the request
	ErrThrottling ErrorCategory = "request_throttled"

	// ErrConfigurationError is returned when there's an issue with AWS configuration
	ErrConfigurationError ErrorCategory = "configuration_error"

	// ErrNetworkError is returned for network-related errors accessing DynamoDB
	ErrNetworkError ErrorCategory = "network_error"

	// ErrInvalidInput is returned when DynamoDB rejects the request shape
	ErrInvalidInput ErrorCategory = "invalid_input"

	// ErrInternalError is returned for unexpected internal errors
	ErrInternalError ErrorCategory = "internal_error"
)

// Error represents an error that occurred during a DynamoDB call with
// additional context about what went wrong.
type Error struct {
	// Category for programmatic error handling
	Category ErrorCategory

	// ResourceType identifies the AWS resource type (the plan table)
	ResourceType string

	// ResourceID identifies the plan id or repo when applicable
	ResourceID string

	// Message provides human-readable details
	Message string

	// Underlying is the wrapped cause of this error
	Underlying error
}

// Error returns a formatted error message
func (e *Error) Error() string {
	if e.ResourceID != "" {
		return fmt.Sprintf("%s: %s [resource: %s/%s]", e.Category, e.Message, e.ResourceType, e.ResourceID)
	}
	if e.ResourceType != "" {
		return fmt.Sprintf("%s: %s [resource type: %s]", e.Category, e.Message, e.ResourceType)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewAWSError creates a new AWS error with the specified details
func NewAWSError(category ErrorCategory, resourceType, resourceID, message string, underlying error) *Error {
	return &Error{
		Category:     category,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Message:      message,
		Underlying:   underlying,
	}
}

// IsErrorCategory checks if an error belongs to a specific error category
func IsErrorCategory(err error, category ErrorCategory) bool {
	if err == nil {
		return false
	}

	var awsErr *Error
	if errors.As(err, &awsErr) {
		return awsErr.Category == category
	}

	return false
}

// dynamoErrorCodes maps DynamoDB API error codes to categories, checked in order.
// Reference: https://docs.aws.amazon.com/amazondynamodb/latest/developerguide/Programming.Errors.html
var dynamoErrorCodes = []struct {
	code     string
	category ErrorCategory
}{
	{"ResourceNotFoundException", ErrResourceNotFound},
	{"AccessDeniedException", ErrPermissionDenied},
	{"UnrecognizedClientException", ErrPermissionDenied},
	{"InvalidSignatureException", ErrPermissionDenied},
	{"MissingAuthenticationTokenException", ErrPermissionDenied},
	{"ProvisionedThroughputExceededException", ErrThrottling},
	{"RequestLimitExceeded", ErrThrottling},
	{"ThrottlingException", ErrThrottling},
	{"ValidationException", ErrInvalidInput},
	{"ItemCollectionSizeLimitExceededException", ErrInvalidInput},
	{"InternalServerError", ErrInternalError},
}

var categoryMessages = map[ErrorCategory]string{
	ErrResourceNotFound:   "Table or index not found",
	ErrPermissionDenied:   "Access denied",
	ErrThrottling:         "Request throttled",
	ErrInvalidInput:       "Invalid input",
	ErrNetworkError:       "Network error while accessing DynamoDB",
	ErrConfigurationError: "AWS SDK configuration error",
	ErrInternalError:      "Internal error occurred",
}

// ClassifyAWSError classifies a DynamoDB error by its API error code, falling
// back to the message text for transport and SDK configuration failures.
func ClassifyAWSError(err error, resourceType, resourceID string) *Error {
	if err == nil {
		return nil
	}

	category := classifyCategory(err)
	return NewAWSError(category, resourceType, resourceID, categoryMessages[category], err)
}

func classifyCategory(err error) ErrorCategory {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		for _, c := range dynamoErrorCodes {
			if apiErr.ErrorCode() == c.code {
				return c.category
			}
		}
	}

	errMsg := err.Error()
	for _, c := range dynamoErrorCodes {
		if contains(errMsg, c.code) {
			return c.category
		}
	}

	switch {
	case contains(errMsg, "no such host", "connection refused", "timeout"):
		return ErrNetworkError
	case contains(errMsg, "could not find region", "failed to retrieve credentials", "failed to refresh cached credentials"):
		return ErrConfigurationError
	default:
		return ErrInternalError
	}
}

// contains checks if the error message contains any of the provided substrings
func contains(s string, substrings ...string) bool {
	for _, substr := range substrings {
		if strings.Contains(strings.ToLower(s), strings.ToLower(substr)) {
			return true
		}
	}
	return false
}
