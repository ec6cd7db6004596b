package service

import "errors"

var (
	ErrFileNotFound  = errors.New("file not found")
	ErrJobNotFound   = errors.New("job not found")
	ErrNoDocument    = errors.New("file has no document")
	ErrReaderNil     = errors.New("reader is nil")
	ErrStorageAbsent = errors.New("document storage unavailable")

	ErrUserExists     = errors.New("email or phone number already registered")
	ErrFileIDExists   = errors.New("file_id already exists")
	ErrSystemIDExists = errors.New("system id already exists")

	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrPasswordTooLong     = errors.New("password must be at most 72 bytes")
	ErrInvalidCredentials  = errors.New("incorrect email or password")
	ErrUnauthorized        = errors.New("could not validate credentials")
	ErrInactiveUser        = errors.New("inactive user")
	ErrInvalidOTP          = errors.New("invalid or expired otp")
	ErrOTPExpired          = errors.New("otp has expired")
	ErrInvalidResetToken   = errors.New("invalid or expired token")
	ErrInvalidResetRequest = errors.New("invalid or expired reset request")
	ErrInvalidTimezone     = errors.New("invalid timezone")
	ErrMailDelivery        = errors.New("failed to send email")
)
