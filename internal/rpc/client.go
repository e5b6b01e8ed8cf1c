package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// DaybookClient is a typed stub over a connection. Every call is sent with
// the JSON content-subtype.
type DaybookClient struct {
	cc grpc.ClientConnInterface
}

func NewDaybookClient(cc grpc.ClientConnInterface) *DaybookClient {
	return &DaybookClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *DaybookClient, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DaybookClient) Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c, MethodPing, in, opts...)
}

func (c *DaybookClient) Register(ctx context.Context, in *CredentialsRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c, MethodRegister, in, opts...)
}

func (c *DaybookClient) Login(ctx context.Context, in *CredentialsRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c, MethodLogin, in, opts...)
}

func (c *DaybookClient) ListMoments(ctx context.Context, in *ListMomentsRequest, opts ...grpc.CallOption) (*ListMomentsResponse, error) {
	return invoke[ListMomentsResponse](ctx, c, MethodListMoments, in, opts...)
}

func (c *DaybookClient) InsertMoment(ctx context.Context, in *InsertMomentRequest, opts ...grpc.CallOption) (*MomentResponse, error) {
	return invoke[MomentResponse](ctx, c, MethodInsertMoment, in, opts...)
}

func (c *DaybookClient) DeleteMoment(ctx context.Context, in *MomentRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, MethodDeleteMoment, in, opts...)
}

func (c *DaybookClient) SetFeatured(ctx context.Context, in *SetFeaturedRequest, opts ...grpc.CallOption) (*MomentResponse, error) {
	return invoke[MomentResponse](ctx, c, MethodSetFeatured, in, opts...)
}

func (c *DaybookClient) GetMomentDates(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*MomentDatesResponse, error) {
	return invoke[MomentDatesResponse](ctx, c, MethodGetMomentDates, in, opts...)
}

func (c *DaybookClient) ImportMoments(ctx context.Context, in *ImportMomentsRequest, opts ...grpc.CallOption) (*ImportMomentsResponse, error) {
	return invoke[ImportMomentsResponse](ctx, c, MethodImportMoments, in, opts...)
}

func (c *DaybookClient) GetUserStreak(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*UserStreakResponse, error) {
	return invoke[UserStreakResponse](ctx, c, MethodGetUserStreak, in, opts...)
}

func (c *DaybookClient) UpsertUserStreak(ctx context.Context, in *UpsertUserStreakRequest, opts ...grpc.CallOption) (*UserStreakResponse, error) {
	return invoke[UserStreakResponse](ctx, c, MethodUpsertUserStreak, in, opts...)
}

func (c *DaybookClient) InsertRewardIfAbsent(ctx context.Context, in *InsertRewardRequest, opts ...grpc.CallOption) (*InsertRewardResponse, error) {
	return invoke[InsertRewardResponse](ctx, c, MethodInsertRewardIfAbsent, in, opts...)
}

func (c *DaybookClient) ListRewards(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*ListRewardsResponse, error) {
	return invoke[ListRewardsResponse](ctx, c, MethodListRewards, in, opts...)
}

func (c *DaybookClient) MarkRewardArtifact(ctx context.Context, in *MarkRewardArtifactRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, MethodMarkRewardArtifact, in, opts...)
}

func (c *DaybookClient) GetProfile(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c, MethodGetProfile, in, opts...)
}

func (c *DaybookClient) MarkMigrated(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c, MethodMarkMigrated, in, opts...)
}

func (c *DaybookClient) ShareMoment(ctx context.Context, in *ShareMomentRequest, opts ...grpc.CallOption) (*ShareMomentResponse, error) {
	return invoke[ShareMomentResponse](ctx, c, MethodShareMoment, in, opts...)
}

func (c *DaybookClient) OpenShare(ctx context.Context, in *OpenShareRequest, opts ...grpc.CallOption) (*MomentResponse, error) {
	return invoke[MomentResponse](ctx, c, MethodOpenShare, in, opts...)
}

func (c *DaybookClient) PhotoUploadURL(ctx context.Context, in *PhotoUploadURLRequest, opts ...grpc.CallOption) (*PhotoUploadURLResponse, error) {
	return invoke[PhotoUploadURLResponse](ctx, c, MethodPhotoUploadURL, in, opts...)
}

func (c *DaybookClient) PhotoURL(ctx context.Context, in *PhotoURLRequest, opts ...grpc.CallOption) (*PhotoURLResponse, error) {
	return invoke[PhotoURLResponse](ctx, c, MethodPhotoURL, in, opts...)
}
