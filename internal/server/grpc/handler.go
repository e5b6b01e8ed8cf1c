package grpc

import (
	"context"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/rpc"
)

func (s *GRPCServer) userID(ctx context.Context) (string, error) {
	id, ok := UserIDFromContext(ctx)
	if !ok {
		return "", common.ErrorUnauthorized
	}
	return id, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *rpc.Empty) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *rpc.CredentialsRequest) (*rpc.RegisterResponse, error) {
	u, err := s.svc.Users.Register(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "Registered", "user_id", u.ID)
	return &rpc.RegisterResponse{UserID: u.ID}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *rpc.CredentialsRequest) (*rpc.LoginResponse, error) {
	res, err := s.svc.Users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return &rpc.LoginResponse{UserID: res.UserID, AccessToken: res.AccessToken, ExpiresAt: res.ExpiresAt}, nil
}

func (s *GRPCServer) ListMoments(ctx context.Context, req *rpc.ListMomentsRequest) (*rpc.ListMomentsResponse, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	ms, err := s.svc.Moments.List(ctx, uid, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}
	return &rpc.ListMomentsResponse{Moments: ms}, nil
}

func (s *GRPCServer) InsertMoment(ctx context.Context, req *rpc.InsertMomentRequest) (*rpc.MomentResponse, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.svc.Moments.Insert(ctx, uid, req.Input)
	if err != nil {
		return nil, err
	}
	return &rpc.MomentResponse{Moment: m}, nil
}

func (s *GRPCServer) DeleteMoment(ctx context.Context, req *rpc.MomentRequest) (*rpc.Empty, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.Moments.Delete(ctx, uid, req.ID); err != nil {
		return nil, err
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) SetFeatured(ctx context.Context, req *rpc.SetFeaturedRequest) (*rpc.MomentResponse, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.svc.Moments.SetFeatured(ctx, uid, req.ID, req.Featured)
	if err != nil {
		return nil, err
	}
	return &rpc.MomentResponse{Moment: m}, nil
}

func (s *GRPCServer) GetMomentDates(ctx context.Context, _ *rpc.UserRequest) (*rpc.MomentDatesResponse, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	ds, err := s.svc.Moments.Dates(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &rpc.MomentDatesResponse{Dates: ds}, nil
}

func (s *GRPCServer) ImportMoments(ctx context.Context, req *rpc.ImportMomentsRequest) (*rpc.ImportMomentsResponse, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	imported, skipped, err := s.svc.Moments.ImportLegacy(ctx, uid, req.Inputs)
	if err != nil {
		return nil, err
	}
	return &rpc.ImportMomentsResponse{Imported: imported, Skipped: skipped}, nil
}

func (s *GRPCServer) GetUserStreak(ctx context.Context, _ *rpc.UserRequest) (*rpc.UserStreakResponse, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	row, err := s.svc.Streaks.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &rpc.UserStreakResponse{Streak: row}, nil
}

func (s *GRPCServer) UpsertUserStreak(ctx context.Context, req *rpc.UpsertUserStreakRequest) (*rpc.UserStreakResponse, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	row, err := s.svc.Streaks.Upsert(ctx, uid, req.Streak)
	if err != nil {
		return nil, err
	}
	return &rpc.UserStreakResponse{Streak: row}, nil
}

func (s *GRPCServer) InsertRewardIfAbsent(ctx context.Context, req *rpc.InsertRewardRequest) (*rpc.InsertRewardResponse, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	r, created, err := s.svc.Streaks.InsertRewardIfAbsent(ctx, uid, req.RewardType, req.StreakDays, req.Payload)
	if err != nil {
		return nil, err
	}
	return &rpc.InsertRewardResponse{Reward: r, Created: created}, nil
}

func (s *GRPCServer) ListRewards(ctx context.Context, _ *rpc.UserRequest) (*rpc.ListRewardsResponse, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	rs, err := s.svc.Streaks.ListRewards(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &rpc.ListRewardsResponse{Rewards: rs}, nil
}

func (s *GRPCServer) MarkRewardArtifact(ctx context.Context, req *rpc.MarkRewardArtifactRequest) (*rpc.Empty, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.Streaks.MarkRewardArtifact(ctx, uid, req.RewardID); err != nil {
		return nil, err
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, _ *rpc.UserRequest) (*rpc.ProfileResponse, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.svc.Profiles.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &rpc.ProfileResponse{Profile: p}, nil
}

func (s *GRPCServer) MarkMigrated(ctx context.Context, _ *rpc.UserRequest) (*rpc.ProfileResponse, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.svc.Profiles.MarkMigrated(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &rpc.ProfileResponse{Profile: p}, nil
}

func (s *GRPCServer) ShareMoment(ctx context.Context, req *rpc.ShareMomentRequest) (*rpc.ShareMomentResponse, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	sh, err := s.svc.Shares.Share(ctx, uid, req.MomentID, req.Recipients)
	if err != nil {
		return nil, err
	}
	return &rpc.ShareMomentResponse{Share: sh}, nil
}

// OpenShare is public; the token is the credential.
func (s *GRPCServer) OpenShare(ctx context.Context, req *rpc.OpenShareRequest) (*rpc.MomentResponse, error) {
	m, err := s.svc.Shares.Open(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	return &rpc.MomentResponse{Moment: m}, nil
}

func (s *GRPCServer) PhotoUploadURL(ctx context.Context, req *rpc.PhotoUploadURLRequest) (*rpc.PhotoUploadURLResponse, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	ref, url, err := s.svc.Photos.UploadURL(ctx, uid, req.ContentType)
	if err != nil {
		return nil, err
	}
	return &rpc.PhotoUploadURLResponse{Ref: ref, UploadURL: url}, nil
}

func (s *GRPCServer) PhotoURL(ctx context.Context, req *rpc.PhotoURLRequest) (*rpc.PhotoURLResponse, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	url, err := s.svc.Photos.URL(ctx, uid, req.Ref)
	if err != nil {
		return nil, err
	}
	return &rpc.PhotoURLResponse{URL: url}, nil
}
