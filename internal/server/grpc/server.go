// Package grpc exposes the services over gRPC using the hand-written
// daybook service descriptor and JSON codec from package rpc.
package grpc

import (
	"context"
	"encoding/json"
	"net"

	"github.com/dmitrijs2005/daybook/internal/calendar"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/dmitrijs2005/daybook/internal/rpc"
	sm "github.com/dmitrijs2005/daybook/internal/server/models"
	"github.com/dmitrijs2005/daybook/internal/server/services"
	"google.golang.org/grpc"
)

type UserService interface {
	Register(ctx context.Context, email, password string) (*sm.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
}

type MomentService interface {
	List(ctx context.Context, userID string, limit, offset int) ([]models.Moment, error)
	Insert(ctx context.Context, userID string, in models.MomentInput) (*models.Moment, error)
	Delete(ctx context.Context, userID, id string) error
	SetFeatured(ctx context.Context, userID, id string, featured bool) (*models.Moment, error)
	Dates(ctx context.Context, userID string) ([]calendar.Date, error)
	ImportLegacy(ctx context.Context, userID string, inputs []models.MomentInput) (int, int, error)
}

type StreakService interface {
	Get(ctx context.Context, userID string) (*models.UserStreak, error)
	Upsert(ctx context.Context, userID string, in models.UserStreak) (*models.UserStreak, error)
	InsertRewardIfAbsent(ctx context.Context, userID string, rt models.RewardType, days int, payload json.RawMessage) (*models.StreakReward, bool, error)
	ListRewards(ctx context.Context, userID string) ([]models.StreakReward, error)
	MarkRewardArtifact(ctx context.Context, userID, rewardID string) error
}

type ProfileService interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	MarkMigrated(ctx context.Context, userID string) (*models.Profile, error)
}

type ShareService interface {
	Share(ctx context.Context, userID, momentID string, recipients []string) (*models.Share, error)
	Open(ctx context.Context, token string) (*models.Moment, error)
}

type PhotoService interface {
	UploadURL(ctx context.Context, userID, contentType string) (string, string, error)
	URL(ctx context.Context, userID, ref string) (string, error)
}

// Services bundles what the handlers call.
type Services struct {
	Users    UserService
	Moments  MomentService
	Streaks  StreakService
	Profiles ProfileService
	Shares   ShareService
	Photos   PhotoService
}

type GRPCServer struct {
	rpc.UnimplementedDaybookServer
	address   string
	svc       Services
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(address string, l logging.Logger, svc Services, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   address,
		logger:    l.With("module", "grpc_server"),
		svc:       svc,
		jwtSecret: []byte(secretKey),
	}
}

// NewServer builds a grpc.Server with the daybook service and the
// interceptor chain registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(
		s.metricsInterceptor,
		s.errorInterceptor,
		s.accessTokenInterceptor,
	))
	srv := grpc.NewServer(opts...)
	rpc.RegisterDaybookServer(srv, s)
	return srv
}

// Run listens on the configured address until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())
	return srv.Serve(lis)
}
