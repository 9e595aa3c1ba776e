package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrPermissionDenied is returned when a user acts on someone else's data
	ErrPermissionDenied = errors.New("permission denied")

	// ErrStudentNotFound is returned when a student id is not on the roster
	ErrStudentNotFound = errors.New("student not found")

	// ErrInvalidDepartment is returned for a department outside the fixed set
	ErrInvalidDepartment = errors.New("invalid department")

	// ErrAlreadyMarked is returned on a second attendance mark on the same day
	ErrAlreadyMarked = errors.New("attendance already marked for today")

	// ErrUnknownClass is returned when a class name is not offered by the student's department
	ErrUnknownClass = errors.New("class not found in department")

	// ErrNoDailyCode is returned when no daily code has been generated yet
	ErrNoDailyCode = errors.New("no daily code has been generated")

	// ErrDailyCodeExpired is returned when the current daily code has expired
	ErrDailyCodeExpired = errors.New("daily code has expired")

	// ErrDailyCodeMismatch is returned when the given code does not match the current code
	ErrDailyCodeMismatch = errors.New("invalid daily code")

	// ErrInvalidCredentials is returned when login details do not match
	ErrInvalidCredentials = errors.New("invalid credentials")
)
