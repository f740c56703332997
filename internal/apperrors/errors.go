package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found, or that
// the caller is not allowed to know whether it exists.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrForbidden indicates that the caller is not allowed to perform the
// operation on this resource (e.g. pledging against their own listing).
var ErrForbidden = errors.New("forbidden")

// ErrInvalidState indicates an operation that is illegal for the resource's
// current lifecycle state (wrong status, expired listing, draft-only edit).
var ErrInvalidState = errors.New("invalid state for operation")

// ErrConfiguration indicates stored data that is internally inconsistent,
// such as a listing whose return band is not one of the known bands.
var ErrConfiguration = errors.New("configuration error")

// ErrExternalService indicates the payment processor (or another remote
// collaborator) was unreachable or rejected a call.
var ErrExternalService = errors.New("external service error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrRefreshTokenExpired indicates the stored refresh token has passed its
// expiry and the user must log in again.
var ErrRefreshTokenExpired = errors.New("refresh token expired")
