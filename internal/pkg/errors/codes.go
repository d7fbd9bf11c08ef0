package errors

import "net/http"

var (
	ErrNotFound = New(
		"NOT_FOUND",
		"Entity not found",
		http.StatusNotFound,
	)

	ErrSourceNotFound = New(
		"SOURCE_NOT_FOUND",
		"Source not found",
		http.StatusNotFound,
	)

	ErrConflict = New(
		"CONFLICT",
		"Entity with this source and uid already exists",
		http.StatusConflict,
	)

	ErrImportLocked = New(
		"IMPORT_LOCKED",
		"Import for this source is already running",
		http.StatusConflict,
	)

	ErrConverterNotFound = New(
		"CONVERTER_NOT_FOUND",
		"No converter registered for source",
		http.StatusNotFound,
	)

	ErrInvalidRadius = New(
		"INVALID_RADIUS",
		"Invalid radius value",
		http.StatusBadRequest,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrValidation = New(
		"VALIDATION_ERROR",
		"Validation failed",
		http.StatusBadRequest,
	)

	ErrRouteNotFound = New(
		"ROUTE_NOT_FOUND",
		"Route not found",
		http.StatusNotFound,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
