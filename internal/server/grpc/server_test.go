package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/daybook/internal/calendar"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/dmitrijs2005/daybook/internal/rpc"
	"github.com/dmitrijs2005/daybook/internal/server/auth"
	sm "github.com/dmitrijs2005/daybook/internal/server/models"
	"github.com/dmitrijs2005/daybook/internal/server/services"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const testSecret = "secret"

type fakeUsers struct{ UserService }

func (fakeUsers) Register(_ context.Context, email, _ string) (*sm.User, error) {
	if email == "taken@x.io" {
		return nil, common.ErrorAlreadyExists
	}
	return &sm.User{ID: "u1", Email: email}, nil
}

func (fakeUsers) Login(_ context.Context, email, password string) (*services.LoginResult, error) {
	if password != "pw" {
		return nil, common.ErrorUnauthorized
	}
	tok, err := auth.GenerateToken("u1", []byte(testSecret), time.Hour)
	if err != nil {
		return nil, err
	}
	return &services.LoginResult{UserID: "u1", AccessToken: tok, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

type fakeMoments struct {
	MomentService
	listedFor string
}

func (f *fakeMoments) List(_ context.Context, userID string, limit, offset int) ([]models.Moment, error) {
	f.listedFor = userID
	return []models.Moment{{ID: "m1", UserID: userID, Title: "t", Date: calendar.MustParse("2026-10-18")}}, nil
}

func (f *fakeMoments) Insert(_ context.Context, userID string, in models.MomentInput) (*models.Moment, error) {
	if _, err := in.SanitizeAndValidate(); err != nil {
		return nil, err
	}
	return nil, errors.New("pq: connection reset by peer")
}

type fakeShares struct{ ShareService }

func (fakeShares) Open(_ context.Context, token string) (*models.Moment, error) {
	if token != "good" {
		return nil, common.ErrorNotFound
	}
	return &models.Moment{ID: "m1", Title: "shared"}, nil
}

func startServer(t *testing.T) (*rpc.DaybookClient, *fakeMoments) {
	t.Helper()
	moments := &fakeMoments{}
	s := NewGRPCServer("", logging.Nop{}, Services{
		Users:   fakeUsers{},
		Moments: moments,
		Shares:  fakeShares{},
	}, testSecret)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return rpc.NewDaybookClient(conn), moments
}

func withToken(t *testing.T, userID string, ttl time.Duration) context.Context {
	t.Helper()
	tok, err := auth.GenerateToken(userID, []byte(testSecret), ttl)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, tok)
}

func TestServer_PublicMethods(t *testing.T) {
	c, _ := startServer(t)
	ctx := context.Background()

	pong, err := c.Ping(ctx, &rpc.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "OK", pong.Status)

	reg, err := c.Register(ctx, &rpc.CredentialsRequest{Email: "a@x.io", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "u1", reg.UserID)

	_, err = c.Register(ctx, &rpc.CredentialsRequest{Email: "taken@x.io", Password: "pw"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	login, err := c.Login(ctx, &rpc.CredentialsRequest{Email: "a@x.io", Password: "pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.AccessToken)

	_, err = c.Login(ctx, &rpc.CredentialsRequest{Email: "a@x.io", Password: "nope"})
	assert.ErrorIs(t, rpc.FromStatus(err), common.ErrorUnauthorized)

	m, err := c.OpenShare(ctx, &rpc.OpenShareRequest{Token: "good"})
	require.NoError(t, err)
	assert.Equal(t, "shared", m.Moment.Title)

	_, err = c.OpenShare(ctx, &rpc.OpenShareRequest{Token: "bad"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestServer_Authentication(t *testing.T) {
	c, moments := startServer(t)

	_, err := c.ListMoments(context.Background(), &rpc.ListMomentsRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	bad := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, "not-a-jwt")
	_, err = c.ListMoments(bad, &rpc.ListMomentsRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.NotErrorIs(t, rpc.FromStatus(err), common.ErrTokenExpired)

	_, err = c.ListMoments(withToken(t, "u1", -time.Minute), &rpc.ListMomentsRequest{})
	assert.ErrorIs(t, rpc.FromStatus(err), common.ErrTokenExpired)

	resp, err := c.ListMoments(withToken(t, "u1", time.Hour), &rpc.ListMomentsRequest{Scope: rpc.Scope{UserID: "u1"}})
	require.NoError(t, err)
	require.Len(t, resp.Moments, 1)
	assert.Equal(t, "u1", moments.listedFor)
}

func TestServer_ScopeMismatchIsDenied(t *testing.T) {
	c, moments := startServer(t)

	_, err := c.ListMoments(withToken(t, "u1", time.Hour), &rpc.ListMomentsRequest{Scope: rpc.Scope{UserID: "u2"}})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
	assert.Empty(t, moments.listedFor)
}

func TestServer_ErrorMapping(t *testing.T) {
	c, _ := startServer(t)
	ctx := withToken(t, "u1", time.Hour)

	_, err := c.InsertMoment(ctx, &rpc.InsertMomentRequest{Input: models.MomentInput{Date: calendar.MustParse("2026-10-18")}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "title")

	_, err = c.InsertMoment(ctx, &rpc.InsertMomentRequest{Input: models.MomentInput{Title: "t", Date: calendar.MustParse("2026-10-18")}})
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.NotContains(t, status.Convert(err).Message(), "pq")
}

func TestServer_Metrics(t *testing.T) {
	c, _ := startServer(t)
	method := rpc.FullMethod(rpc.MethodPing)
	before := testutil.ToFloat64(requestsTotal.WithLabelValues(method, codes.OK.String()))

	_, err := c.Ping(context.Background(), &rpc.Empty{})
	require.NoError(t, err)

	after := testutil.ToFloat64(requestsTotal.WithLabelValues(method, codes.OK.String()))
	assert.Equal(t, before+1, after)
}
