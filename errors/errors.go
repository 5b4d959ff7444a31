package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	// Store / aggregation failures.
	ErrStoreUnavailable = fmt.Errorf("message store unavailable")

	// Room rules.
	ErrRoomNotFound   = fmt.Errorf("room not found")
	ErrRoomFull       = fmt.Errorf("room full")
	ErrAdminsOnly     = fmt.Errorf("only admins can post messages in this room")
	ErrGroupNeedsName = fmt.Errorf("group rooms need a name")

	// Dashboard client failures.
	ErrRequestFailed     = fmt.Errorf("stats request failed")
	ErrMalformedResponse = fmt.Errorf("stats response missing data field")

	// Auth.
	ErrInvalidToken = fmt.Errorf("invalid token")
)
