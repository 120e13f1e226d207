package errors

import "errors"

var (
	ErrWorkspaceNotFound      = errors.New("workspace not found")
	ErrWorkspaceAlreadyExists = errors.New("workspace already exists")
	ErrProjectNotFound        = errors.New("project not found")
	ErrProjectAlreadyAdded    = errors.New("project already added to workspace")
	ErrMemberAlreadyAdded     = errors.New("member already added to workspace")

	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrSubscriptionExists   = errors.New("subscription already exists")
	ErrSubscriptionCanceled = errors.New("subscription is canceled")

	ErrPermissionDenied = errors.New("permission denied")
)

// clientErrors are 4xx-equivalent: consumers dead-letter them instead of
// asking the broker to redeliver, request handlers map them to 4xx.
var clientErrors = []error{
	ErrWorkspaceNotFound,
	ErrWorkspaceAlreadyExists,
	ErrProjectNotFound,
	ErrProjectAlreadyAdded,
	ErrMemberAlreadyAdded,
	ErrSubscriptionNotFound,
	ErrSubscriptionExists,
	ErrSubscriptionCanceled,
	ErrPermissionDenied,
}

// IsClientError reports whether err belongs to the 4xx-equivalent class.
// Everything else is treated as transient infrastructure failure.
func IsClientError(err error) bool {
	for _, clientErr := range clientErrors {
		if errors.Is(err, clientErr) {
			return true
		}
	}
	return false
}
