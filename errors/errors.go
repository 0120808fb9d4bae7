package errors

import (
	stderrors "errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Domain errors. Every one of them is a recoverable, caller-visible outcome of a request.
var (
	ErrNameTaken         = fmt.Errorf("client name already taken")
	ErrAlreadyRegistered = fmt.Errorf("endpoint already registered under another name")
	ErrRecipientNotFound = fmt.Errorf("recipient not found")
	ErrGroupNotFound     = fmt.Errorf("group not found")
	ErrNotMember         = fmt.Errorf("not a member of the group")
	ErrAlreadyMember     = fmt.Errorf("already a member of the group")
	ErrNoPendingInvite   = fmt.Errorf("no pending invitation for the group")
	ErrAdminCannotLeave  = fmt.Errorf("admin cannot leave the group, disband it instead")
	ErrNotAdmin          = fmt.Errorf("only the group admin can do this")
	ErrAlreadyExists     = fmt.Errorf("group already exists")
	ErrInvalidRequest    = fmt.Errorf("invalid request")
	ErrUnknownRequest    = fmt.Errorf("unknown request kind")
	ErrSearchDisabled    = fmt.Errorf("history search is disabled")
)

// Infrastructure errors.
var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrCoordinatorStopped = fmt.Errorf("coordinator stopped")
	ErrEndpointFull       = fmt.Errorf("endpoint buffer full")
	ErrEndpointClosed     = fmt.Errorf("endpoint closed")
	ErrEmptyWords         = fmt.Errorf("no censored words found")
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrNameTaken, "NameTaken"},
	{ErrAlreadyRegistered, "AlreadyRegistered"},
	{ErrRecipientNotFound, "RecipientNotFound"},
	{ErrGroupNotFound, "GroupNotFound"},
	{ErrNotMember, "NotMember"},
	{ErrAlreadyMember, "AlreadyMember"},
	{ErrNoPendingInvite, "NoPendingInvite"},
	{ErrAdminCannotLeave, "AdminCannotLeave"},
	{ErrNotAdmin, "NotAdmin"},
	{ErrAlreadyExists, "AlreadyExists"},
	{ErrInvalidRequest, "InvalidRequest"},
	{ErrUnknownRequest, "UnknownRequest"},
	{ErrSearchDisabled, "SearchDisabled"},
	{ErrCoordinatorStopped, "Unavailable"},
}

// Kind returns the stable wire name of err, "Internal" when err is not part of the taxonomy.
func Kind(err error) string {
	for _, k := range kinds {
		if stderrors.Is(err, k.err) {
			return k.kind
		}
	}
	return "Internal"
}

// FromKind rebuilds the sentinel for a wire kind so clients can use errors.Is.
func FromKind(kind, message string) error {
	for _, k := range kinds {
		if k.kind == kind {
			if message == "" || message == k.err.Error() {
				return k.err
			}
			return fmt.Errorf("%w: %s", k.err, message)
		}
	}
	return fmt.Errorf("%s: %s", kind, message)
}

// MapToGRPCError translates a domain error into a gRPC status error.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case stderrors.Is(err, ErrRecipientNotFound), stderrors.Is(err, ErrGroupNotFound):
		return status.Error(codes.NotFound, err.Error())
	case stderrors.Is(err, ErrNotMember), stderrors.Is(err, ErrNotAdmin),
		stderrors.Is(err, ErrNoPendingInvite):
		return status.Error(codes.PermissionDenied, err.Error())
	case stderrors.Is(err, ErrNameTaken), stderrors.Is(err, ErrAlreadyExists),
		stderrors.Is(err, ErrAlreadyMember), stderrors.Is(err, ErrAlreadyRegistered):
		return status.Error(codes.AlreadyExists, err.Error())
	case stderrors.Is(err, ErrAdminCannotLeave), stderrors.Is(err, ErrSearchDisabled):
		return status.Error(codes.FailedPrecondition, err.Error())
	case stderrors.Is(err, ErrInvalidRequest), stderrors.Is(err, ErrUnknownRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case stderrors.Is(err, ErrCoordinatorStopped):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
