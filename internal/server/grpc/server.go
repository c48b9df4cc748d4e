// Package grpc serves the diary.DiaryService API defined in internal/api
// and authenticates callers by access token.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/voicediary/internal/api"
	"github.com/dmitrijs2005/voicediary/internal/logging"
	"github.com/dmitrijs2005/voicediary/internal/server/models"
	"github.com/dmitrijs2005/voicediary/internal/server/services"
	"google.golang.org/grpc"
)

type entrySvc interface {
	Submit(ctx context.Context, req services.SubmitRequest) (*models.Entry, error)
	Get(ctx context.Context, userID, entryID string) (*models.Entry, error)
	List(ctx context.Context, userID string, limit, offset int) ([]*models.Entry, error)
	Delete(ctx context.Context, userID, entryID string) error
	Expenses(ctx context.Context, userID, entryID string) ([]*models.Expense, error)
	RequestAudioUpload(ctx context.Context, userID, fileName string) (string, string, error)
}

type admissionSvc interface {
	EnsureQuota(ctx context.Context, userID string) error
	Quota(ctx context.Context, userID string) (*models.UserQuota, error)
	CheckPremiumAccess(ctx context.Context, userID string) (bool, error)
	CanCreateEntry(ctx context.Context, userID string) (bool, error)
	AskQuestion(ctx context.Context, userID string) (int64, bool, error)
	TrialDaysLeft(ctx context.Context, userID string) (int, error)
}

type GRPCServer struct {
	address   string
	entries   entrySvc
	admission admissionSvc
	logger    logging.Logger
	jwtSecret []byte
	now       func() time.Time
}

func NewGRPCServer(a string, l logging.Logger, es entrySvc, as admissionSvc, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		entries:   es,
		admission: as,
		jwtSecret: []byte(secretKey),
		now:       time.Now,
	}
}

// newServer builds the grpc.Server with the auth interceptor and the diary
// service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	api.RegisterDiaryServiceServer(srv, s)
	return srv
}

// Run serves on the configured address until ctx is done, then stops
// gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	<-stopped
	return nil
}
