package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// DelayServiceName is the fully qualified gRPC service name.
const DelayServiceName = "vetting.v1.DelayService"

const (
	DelayService_ComputeDelays_FullMethodName        = "/vetting.v1.DelayService/ComputeDelays"
	DelayService_CalculateBucketDelay_FullMethodName = "/vetting.v1.DelayService/CalculateBucketDelay"
	DelayService_ListVettingData_FullMethodName      = "/vetting.v1.DelayService/ListVettingData"
)

// DelayServiceServer is the server API for vetting.v1.DelayService. Requests
// and responses are JSON-shaped Structs.
type DelayServiceServer interface {
	ComputeDelays(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CalculateBucketDelay(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListVettingData(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterDelayServiceServer registers srv on s.
func RegisterDelayServiceServer(s grpc.ServiceRegistrar, srv DelayServiceServer) {
	s.RegisterService(&DelayService_ServiceDesc, srv)
}

// DelayService_ServiceDesc is the grpc.ServiceDesc for vetting.v1.DelayService.
var DelayService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: DelayServiceName,
	HandlerType: (*DelayServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ComputeDelays", Handler: computeDelaysHandler},
		{MethodName: "CalculateBucketDelay", Handler: calculateBucketDelayHandler},
		{MethodName: "ListVettingData", Handler: listVettingDataHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vetting/v1/delay.proto",
}

type structMethod func(DelayServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call structMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DelayServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DelayServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var (
	computeDelaysHandler        = unaryHandler(DelayService_ComputeDelays_FullMethodName, DelayServiceServer.ComputeDelays)
	calculateBucketDelayHandler = unaryHandler(DelayService_CalculateBucketDelay_FullMethodName, DelayServiceServer.CalculateBucketDelay)
	listVettingDataHandler      = unaryHandler(DelayService_ListVettingData_FullMethodName, DelayServiceServer.ListVettingData)
)

// DelayServiceClient is the client API for vetting.v1.DelayService.
type DelayServiceClient interface {
	ComputeDelays(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CalculateBucketDelay(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListVettingData(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type delayServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewDelayServiceClient(cc grpc.ClientConnInterface) DelayServiceClient {
	return &delayServiceClient{cc}
}

func (c *delayServiceClient) ComputeDelays(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, DelayService_ComputeDelays_FullMethodName, in, opts)
}

func (c *delayServiceClient) CalculateBucketDelay(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, DelayService_CalculateBucketDelay_FullMethodName, in, opts)
}

func (c *delayServiceClient) ListVettingData(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, DelayService_ListVettingData_FullMethodName, in, opts)
}

func (c *delayServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
