package client

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dmitrijs2005/daybook/internal/calendar"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/dmitrijs2005/daybook/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      *rpc.DaybookClient

	mu          sync.RWMutex
	accessToken string
}

var _ Remote = (*GRPCClient)(nil)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) setToken(t string) {
	s.mu.Lock()
	s.accessToken = t
	s.mu.Unlock()
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if t := s.token(); t != "" {
		ctx = withAccessToken(ctx, t)
	}
	return mapError(invoker(ctx, method, req, reply, cc, opts...))
}

// NewGRPCClient creates a lazily connecting client. Extra dial options are
// appended after the defaults.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = rpc.NewDaybookClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func scope(userID string) rpc.Scope { return rpc.Scope{UserID: userID} }

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &rpc.Empty{})
	if err != nil {
		return err
	}
	if resp.Status != "OK" {
		return common.ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Register(ctx context.Context, email, password string) (string, error) {
	resp, err := s.client.Register(ctx, &rpc.CredentialsRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}
	return resp.UserID, nil
}

// Login stores the issued access token for subsequent calls.
func (s *GRPCClient) Login(ctx context.Context, email, password string) (*Session, error) {
	resp, err := s.client.Login(ctx, &rpc.CredentialsRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	s.setToken(resp.AccessToken)
	return &Session{UserID: resp.UserID, ExpiresAt: resp.ExpiresAt}, nil
}

func (s *GRPCClient) Logout() {
	s.setToken("")
}

func (s *GRPCClient) ListMoments(ctx context.Context, userID string, limit, offset int) ([]models.Moment, error) {
	resp, err := s.client.ListMoments(ctx, &rpc.ListMomentsRequest{Scope: scope(userID), Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return resp.Moments, nil
}

func (s *GRPCClient) InsertMoment(ctx context.Context, userID string, in models.MomentInput) (*models.Moment, error) {
	resp, err := s.client.InsertMoment(ctx, &rpc.InsertMomentRequest{Scope: scope(userID), Input: in})
	if err != nil {
		return nil, err
	}
	return resp.Moment, nil
}

func (s *GRPCClient) DeleteMoment(ctx context.Context, userID, id string) error {
	_, err := s.client.DeleteMoment(ctx, &rpc.MomentRequest{Scope: scope(userID), ID: id})
	return err
}

func (s *GRPCClient) SetFeatured(ctx context.Context, userID, id string, featured bool) (*models.Moment, error) {
	resp, err := s.client.SetFeatured(ctx, &rpc.SetFeaturedRequest{Scope: scope(userID), ID: id, Featured: featured})
	if err != nil {
		return nil, err
	}
	return resp.Moment, nil
}

func (s *GRPCClient) GetMomentDates(ctx context.Context, userID string) ([]calendar.Date, error) {
	resp, err := s.client.GetMomentDates(ctx, &rpc.UserRequest{Scope: scope(userID)})
	if err != nil {
		return nil, err
	}
	return resp.Dates, nil
}

func (s *GRPCClient) GetUserStreak(ctx context.Context, userID string) (*models.UserStreak, error) {
	resp, err := s.client.GetUserStreak(ctx, &rpc.UserRequest{Scope: scope(userID)})
	if err != nil {
		return nil, err
	}
	return resp.Streak, nil
}

func (s *GRPCClient) UpsertUserStreak(ctx context.Context, userID string, row models.UserStreak) (*models.UserStreak, error) {
	resp, err := s.client.UpsertUserStreak(ctx, &rpc.UpsertUserStreakRequest{Scope: scope(userID), Streak: row})
	if err != nil {
		return nil, err
	}
	return resp.Streak, nil
}

func (s *GRPCClient) InsertRewardIfAbsent(ctx context.Context, userID string, rewardType models.RewardType, streakDays int, payload json.RawMessage) (*models.StreakReward, bool, error) {
	resp, err := s.client.InsertRewardIfAbsent(ctx, &rpc.InsertRewardRequest{
		Scope:      scope(userID),
		RewardType: rewardType,
		StreakDays: streakDays,
		Payload:    payload,
	})
	if err != nil {
		return nil, false, err
	}
	return resp.Reward, resp.Created, nil
}

func (s *GRPCClient) ListRewards(ctx context.Context, userID string) ([]models.StreakReward, error) {
	resp, err := s.client.ListRewards(ctx, &rpc.UserRequest{Scope: scope(userID)})
	if err != nil {
		return nil, err
	}
	return resp.Rewards, nil
}

func (s *GRPCClient) MarkRewardArtifact(ctx context.Context, userID, rewardID string) error {
	_, err := s.client.MarkRewardArtifact(ctx, &rpc.MarkRewardArtifactRequest{Scope: scope(userID), RewardID: rewardID})
	return err
}

func (s *GRPCClient) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	resp, err := s.client.GetProfile(ctx, &rpc.UserRequest{Scope: scope(userID)})
	if err != nil {
		return nil, err
	}
	return resp.Profile, nil
}

func (s *GRPCClient) MarkMigrated(ctx context.Context, userID string) (*models.Profile, error) {
	resp, err := s.client.MarkMigrated(ctx, &rpc.UserRequest{Scope: scope(userID)})
	if err != nil {
		return nil, err
	}
	return resp.Profile, nil
}

func (s *GRPCClient) ImportMoments(ctx context.Context, userID string, inputs []models.MomentInput) (int, int, error) {
	resp, err := s.client.ImportMoments(ctx, &rpc.ImportMomentsRequest{Scope: scope(userID), Inputs: inputs})
	if err != nil {
		return 0, 0, err
	}
	return resp.Imported, resp.Skipped, nil
}

func (s *GRPCClient) ShareMoment(ctx context.Context, userID, momentID string, recipients []string) (*models.Share, error) {
	resp, err := s.client.ShareMoment(ctx, &rpc.ShareMomentRequest{Scope: scope(userID), MomentID: momentID, Recipients: recipients})
	if err != nil {
		return nil, err
	}
	return resp.Share, nil
}

func (s *GRPCClient) OpenShare(ctx context.Context, token string) (*models.Moment, error) {
	resp, err := s.client.OpenShare(ctx, &rpc.OpenShareRequest{Token: token})
	if err != nil {
		return nil, err
	}
	return resp.Moment, nil
}

func (s *GRPCClient) PhotoUploadURL(ctx context.Context, userID, contentType string) (string, string, error) {
	resp, err := s.client.PhotoUploadURL(ctx, &rpc.PhotoUploadURLRequest{Scope: scope(userID), ContentType: contentType})
	if err != nil {
		return "", "", err
	}
	return resp.Ref, resp.UploadURL, nil
}

func (s *GRPCClient) PhotoURL(ctx context.Context, userID, ref string) (string, error) {
	resp, err := s.client.PhotoURL(ctx, &rpc.PhotoURLRequest{Scope: scope(userID), Ref: ref})
	if err != nil {
		return "", err
	}
	return resp.URL, nil
}
