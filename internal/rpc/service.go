package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "daybook.v1.DaybookService"

// FullMethod returns the gRPC method path for name.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// Method names.
const (
	MethodPing                 = "Ping"
	MethodRegister             = "Register"
	MethodLogin                = "Login"
	MethodListMoments          = "ListMoments"
	MethodInsertMoment         = "InsertMoment"
	MethodDeleteMoment         = "DeleteMoment"
	MethodSetFeatured          = "SetFeatured"
	MethodGetMomentDates       = "GetMomentDates"
	MethodGetUserStreak        = "GetUserStreak"
	MethodUpsertUserStreak     = "UpsertUserStreak"
	MethodInsertRewardIfAbsent = "InsertRewardIfAbsent"
	MethodListRewards          = "ListRewards"
	MethodMarkRewardArtifact   = "MarkRewardArtifact"
	MethodGetProfile           = "GetProfile"
	MethodMarkMigrated         = "MarkMigrated"
	MethodImportMoments        = "ImportMoments"
	MethodShareMoment          = "ShareMoment"
	MethodOpenShare            = "OpenShare"
	MethodPhotoUploadURL       = "PhotoUploadURL"
	MethodPhotoURL             = "PhotoURL"
)

// PublicMethods can be called without an access token.
var PublicMethods = map[string]bool{
	FullMethod(MethodPing):      true,
	FullMethod(MethodRegister):  true,
	FullMethod(MethodLogin):     true,
	FullMethod(MethodOpenShare): true,
}

// DaybookServer is implemented by the server transport.
type DaybookServer interface {
	Ping(context.Context, *Empty) (*PingResponse, error)
	Register(context.Context, *CredentialsRequest) (*RegisterResponse, error)
	Login(context.Context, *CredentialsRequest) (*LoginResponse, error)

	ListMoments(context.Context, *ListMomentsRequest) (*ListMomentsResponse, error)
	InsertMoment(context.Context, *InsertMomentRequest) (*MomentResponse, error)
	DeleteMoment(context.Context, *MomentRequest) (*Empty, error)
	SetFeatured(context.Context, *SetFeaturedRequest) (*MomentResponse, error)
	GetMomentDates(context.Context, *UserRequest) (*MomentDatesResponse, error)
	ImportMoments(context.Context, *ImportMomentsRequest) (*ImportMomentsResponse, error)

	GetUserStreak(context.Context, *UserRequest) (*UserStreakResponse, error)
	UpsertUserStreak(context.Context, *UpsertUserStreakRequest) (*UserStreakResponse, error)
	InsertRewardIfAbsent(context.Context, *InsertRewardRequest) (*InsertRewardResponse, error)
	ListRewards(context.Context, *UserRequest) (*ListRewardsResponse, error)
	MarkRewardArtifact(context.Context, *MarkRewardArtifactRequest) (*Empty, error)

	GetProfile(context.Context, *UserRequest) (*ProfileResponse, error)
	MarkMigrated(context.Context, *UserRequest) (*ProfileResponse, error)

	ShareMoment(context.Context, *ShareMomentRequest) (*ShareMomentResponse, error)
	OpenShare(context.Context, *OpenShareRequest) (*MomentResponse, error)

	PhotoUploadURL(context.Context, *PhotoUploadURLRequest) (*PhotoUploadURLResponse, error)
	PhotoURL(context.Context, *PhotoURLRequest) (*PhotoURLResponse, error)
}

func unary[Req, Resp any](name string, call func(DaybookServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DaybookServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(DaybookServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the Daybook service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DaybookServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, DaybookServer.Ping),
		unary(MethodRegister, DaybookServer.Register),
		unary(MethodLogin, DaybookServer.Login),
		unary(MethodListMoments, DaybookServer.ListMoments),
		unary(MethodInsertMoment, DaybookServer.InsertMoment),
		unary(MethodDeleteMoment, DaybookServer.DeleteMoment),
		unary(MethodSetFeatured, DaybookServer.SetFeatured),
		unary(MethodGetMomentDates, DaybookServer.GetMomentDates),
		unary(MethodImportMoments, DaybookServer.ImportMoments),
		unary(MethodGetUserStreak, DaybookServer.GetUserStreak),
		unary(MethodUpsertUserStreak, DaybookServer.UpsertUserStreak),
		unary(MethodInsertRewardIfAbsent, DaybookServer.InsertRewardIfAbsent),
		unary(MethodListRewards, DaybookServer.ListRewards),
		unary(MethodMarkRewardArtifact, DaybookServer.MarkRewardArtifact),
		unary(MethodGetProfile, DaybookServer.GetProfile),
		unary(MethodMarkMigrated, DaybookServer.MarkMigrated),
		unary(MethodShareMoment, DaybookServer.ShareMoment),
		unary(MethodOpenShare, DaybookServer.OpenShare),
		unary(MethodPhotoUploadURL, DaybookServer.PhotoUploadURL),
		unary(MethodPhotoURL, DaybookServer.PhotoURL),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "daybook.v1",
}

// RegisterDaybookServer attaches srv to s.
func RegisterDaybookServer(s grpc.ServiceRegistrar, srv DaybookServer) {
	s.RegisterService(&ServiceDesc, srv)
}
