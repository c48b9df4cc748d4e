package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/voicediary/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors onto gRPC status codes. Internal failures
// are logged and their details withheld from the caller.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, common.ErrAdmissionDenied):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	s.logger.Error(ctx, "request failed", "method", method, "error", err)
	return status.Error(codes.Internal, "internal error")
}
