package rpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnimplementedDaybookServer answers every method with codes.Unimplemented.
// Embed it in partial implementations.
type UnimplementedDaybookServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedDaybookServer) Ping(context.Context, *Empty) (*PingResponse, error) {
	return nil, unimplemented(MethodPing)
}
func (UnimplementedDaybookServer) Register(context.Context, *CredentialsRequest) (*RegisterResponse, error) {
	return nil, unimplemented(MethodRegister)
}
func (UnimplementedDaybookServer) Login(context.Context, *CredentialsRequest) (*LoginResponse, error) {
	return nil, unimplemented(MethodLogin)
}
func (UnimplementedDaybookServer) ListMoments(context.Context, *ListMomentsRequest) (*ListMomentsResponse, error) {
	return nil, unimplemented(MethodListMoments)
}
func (UnimplementedDaybookServer) InsertMoment(context.Context, *InsertMomentRequest) (*MomentResponse, error) {
	return nil, unimplemented(MethodInsertMoment)
}
func (UnimplementedDaybookServer) DeleteMoment(context.Context, *MomentRequest) (*Empty, error) {
	return nil, unimplemented(MethodDeleteMoment)
}
func (UnimplementedDaybookServer) SetFeatured(context.Context, *SetFeaturedRequest) (*MomentResponse, error) {
	return nil, unimplemented(MethodSetFeatured)
}
func (UnimplementedDaybookServer) GetMomentDates(context.Context, *UserRequest) (*MomentDatesResponse, error) {
	return nil, unimplemented(MethodGetMomentDates)
}
func (UnimplementedDaybookServer) ImportMoments(context.Context, *ImportMomentsRequest) (*ImportMomentsResponse, error) {
	return nil, unimplemented(MethodImportMoments)
}
func (UnimplementedDaybookServer) GetUserStreak(context.Context, *UserRequest) (*UserStreakResponse, error) {
	return nil, unimplemented(MethodGetUserStreak)
}
func (UnimplementedDaybookServer) UpsertUserStreak(context.Context, *UpsertUserStreakRequest) (*UserStreakResponse, error) {
	return nil, unimplemented(MethodUpsertUserStreak)
}
func (UnimplementedDaybookServer) InsertRewardIfAbsent(context.Context, *InsertRewardRequest) (*InsertRewardResponse, error) {
	return nil, unimplemented(MethodInsertRewardIfAbsent)
}
func (UnimplementedDaybookServer) ListRewards(context.Context, *UserRequest) (*ListRewardsResponse, error) {
	return nil, unimplemented(MethodListRewards)
}
func (UnimplementedDaybookServer) MarkRewardArtifact(context.Context, *MarkRewardArtifactRequest) (*Empty, error) {
	return nil, unimplemented(MethodMarkRewardArtifact)
}
func (UnimplementedDaybookServer) GetProfile(context.Context, *UserRequest) (*ProfileResponse, error) {
	return nil, unimplemented(MethodGetProfile)
}
func (UnimplementedDaybookServer) MarkMigrated(context.Context, *UserRequest) (*ProfileResponse, error) {
	return nil, unimplemented(MethodMarkMigrated)
}
func (UnimplementedDaybookServer) ShareMoment(context.Context, *ShareMomentRequest) (*ShareMomentResponse, error) {
	return nil, unimplemented(MethodShareMoment)
}
func (UnimplementedDaybookServer) OpenShare(context.Context, *OpenShareRequest) (*MomentResponse, error) {
	return nil, unimplemented(MethodOpenShare)
}
func (UnimplementedDaybookServer) PhotoUploadURL(context.Context, *PhotoUploadURLRequest) (*PhotoUploadURLResponse, error) {
	return nil, unimplemented(MethodPhotoUploadURL)
}
func (UnimplementedDaybookServer) PhotoURL(context.Context, *PhotoURLRequest) (*PhotoURLResponse, error) {
	return nil, unimplemented(MethodPhotoURL)
}
