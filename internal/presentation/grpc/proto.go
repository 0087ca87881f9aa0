package grpc

// proto.go defines the gRPC server interface derived from
// lumen/mortgage/v1/mortgage.proto. This file serves as a stand-in for
// buf-generated code. Once `buf generate` is run, replace this file with the
// import from github.com/lumenbank/mortgage-engine/api/gen/go/lumen/mortgage/v1.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// MortgageServiceServer is the server API for MortgageService.
// It mirrors the proto-generated interface from lumen.mortgage.v1.MortgageService.
type MortgageServiceServer interface {
	OpenAccount(context.Context, *OpenAccountRequest) (*OpenAccountResponse, error)
	ActivateAccount(context.Context, *ActivateAccountRequest) (*ActivateAccountResponse, error)
	ProcessPayment(context.Context, *ProcessPaymentRequest) (*ProcessPaymentResponse, error)
	RunScheduledTick(context.Context, *RunScheduledTickRequest) (*RunScheduledTickResponse, error)
	ChangeParameters(context.Context, *ChangeParametersRequest) (*ChangeParametersResponse, error)
	ConvertProduct(context.Context, *ConvertProductRequest) (*ConvertProductResponse, error)
	CloseAccount(context.Context, *CloseAccountRequest) (*CloseAccountResponse, error)
	GetBalances(context.Context, *GetBalancesRequest) (*GetBalancesResponse, error)
	mustEmbedUnimplementedMortgageServiceServer()
}

// UnimplementedMortgageServiceServer provides forward-compatible default implementations.
type UnimplementedMortgageServiceServer struct{}

func (UnimplementedMortgageServiceServer) OpenAccount(context.Context, *OpenAccountRequest) (*OpenAccountResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method OpenAccount not implemented")
}
func (UnimplementedMortgageServiceServer) ActivateAccount(context.Context, *ActivateAccountRequest) (*ActivateAccountResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ActivateAccount not implemented")
}
func (UnimplementedMortgageServiceServer) ProcessPayment(context.Context, *ProcessPaymentRequest) (*ProcessPaymentResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ProcessPayment not implemented")
}
func (UnimplementedMortgageServiceServer) RunScheduledTick(context.Context, *RunScheduledTickRequest) (*RunScheduledTickResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RunScheduledTick not implemented")
}
func (UnimplementedMortgageServiceServer) ChangeParameters(context.Context, *ChangeParametersRequest) (*ChangeParametersResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ChangeParameters not implemented")
}
func (UnimplementedMortgageServiceServer) ConvertProduct(context.Context, *ConvertProductRequest) (*ConvertProductResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ConvertProduct not implemented")
}
func (UnimplementedMortgageServiceServer) CloseAccount(context.Context, *CloseAccountRequest) (*CloseAccountResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CloseAccount not implemented")
}
func (UnimplementedMortgageServiceServer) GetBalances(context.Context, *GetBalancesRequest) (*GetBalancesResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetBalances not implemented")
}
func (UnimplementedMortgageServiceServer) mustEmbedUnimplementedMortgageServiceServer() {}

// RegisterMortgageServiceServer registers the MortgageServiceServer with the gRPC server.
func RegisterMortgageServiceServer(s *grpclib.Server, srv MortgageServiceServer) {
	s.RegisterService(&_MortgageService_serviceDesc, srv) //nolint:revive // gRPC handler registration
}

//nolint:revive // gRPC handler registration
var _MortgageService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: "lumen.mortgage.v1.MortgageService",
	HandlerType: (*MortgageServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "OpenAccount", Handler: _MortgageService_OpenAccount_Handler},           //nolint:revive // gRPC handler registration
		{MethodName: "ActivateAccount", Handler: _MortgageService_ActivateAccount_Handler},   //nolint:revive // gRPC handler registration
		{MethodName: "ProcessPayment", Handler: _MortgageService_ProcessPayment_Handler},     //nolint:revive // gRPC handler registration
		{MethodName: "RunScheduledTick", Handler: _MortgageService_RunScheduledTick_Handler}, //nolint:revive // gRPC handler registration
		{MethodName: "ChangeParameters", Handler: _MortgageService_ChangeParameters_Handler}, //nolint:revive // gRPC handler registration
		{MethodName: "ConvertProduct", Handler: _MortgageService_ConvertProduct_Handler},     //nolint:revive // gRPC handler registration
		{MethodName: "CloseAccount", Handler: _MortgageService_CloseAccount_Handler},         //nolint:revive // gRPC handler registration
		{MethodName: "GetBalances", Handler: _MortgageService_GetBalances_Handler},           //nolint:revive // gRPC handler registration
	},
	Streams: []grpclib.StreamDesc{},
}

//nolint:revive,errcheck // gRPC handler registration
func _MortgageService_OpenAccount_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(OpenAccountRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MortgageServiceServer).OpenAccount(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/lumen.mortgage.v1.MortgageService/OpenAccount",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MortgageServiceServer).OpenAccount(ctx, req.(*OpenAccountRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _MortgageService_ActivateAccount_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(ActivateAccountRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MortgageServiceServer).ActivateAccount(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/lumen.mortgage.v1.MortgageService/ActivateAccount",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MortgageServiceServer).ActivateAccount(ctx, req.(*ActivateAccountRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _MortgageService_ProcessPayment_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(ProcessPaymentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MortgageServiceServer).ProcessPayment(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/lumen.mortgage.v1.MortgageService/ProcessPayment",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MortgageServiceServer).ProcessPayment(ctx, req.(*ProcessPaymentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _MortgageService_RunScheduledTick_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(RunScheduledTickRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MortgageServiceServer).RunScheduledTick(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/lumen.mortgage.v1.MortgageService/RunScheduledTick",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MortgageServiceServer).RunScheduledTick(ctx, req.(*RunScheduledTickRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _MortgageService_ChangeParameters_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(ChangeParametersRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MortgageServiceServer).ChangeParameters(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/lumen.mortgage.v1.MortgageService/ChangeParameters",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MortgageServiceServer).ChangeParameters(ctx, req.(*ChangeParametersRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _MortgageService_ConvertProduct_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(ConvertProductRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MortgageServiceServer).ConvertProduct(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/lumen.mortgage.v1.MortgageService/ConvertProduct",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MortgageServiceServer).ConvertProduct(ctx, req.(*ConvertProductRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _MortgageService_CloseAccount_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(CloseAccountRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MortgageServiceServer).CloseAccount(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/lumen.mortgage.v1.MortgageService/CloseAccount",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MortgageServiceServer).CloseAccount(ctx, req.(*CloseAccountRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _MortgageService_GetBalances_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetBalancesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MortgageServiceServer).GetBalances(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/lumen.mortgage.v1.MortgageService/GetBalances",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MortgageServiceServer).GetBalances(ctx, req.(*GetBalancesRequest))
	}
	return interceptor(ctx, in, info, handler)
}
