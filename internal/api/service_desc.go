package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// TriageServiceName is the fully qualified gRPC service name.
const TriageServiceName = "crashkit.v1.Triage"

const (
	summarizeMethod = "/" + TriageServiceName + "/Summarize"
	inspectMethod   = "/" + TriageServiceName + "/Inspect"
)

// TriageServer is the server API for the triage service. Requests and
// responses are JSON-shaped google.protobuf.Struct messages.
type TriageServer interface {
	Summarize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Inspect(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// TriageServiceDesc describes the triage service for grpc.Server registration.
var TriageServiceDesc = grpc.ServiceDesc{
	ServiceName: TriageServiceName,
	HandlerType: (*TriageServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Summarize", Handler: summarizeHandler},
		{MethodName: "Inspect", Handler: inspectHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "crashkit/v1/triage.proto",
}

// RegisterTriageServer registers srv on s.
func RegisterTriageServer(s grpc.ServiceRegistrar, srv TriageServer) {
	s.RegisterService(&TriageServiceDesc, srv)
}

func summarizeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TriageServer).Summarize(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: summarizeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TriageServer).Summarize(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func inspectHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TriageServer).Inspect(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: inspectMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TriageServer).Inspect(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// TriageClient calls the triage service.
type TriageClient struct {
	cc grpc.ClientConnInterface
}

// NewTriageClient constructs a client over cc.
func NewTriageClient(cc grpc.ClientConnInterface) *TriageClient {
	return &TriageClient{cc: cc}
}

// Summarize requests a full bundle summary.
func (c *TriageClient) Summarize(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, summarizeMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Inspect requests the short event-based report of a bundle.
func (c *TriageClient) Inspect(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, inspectMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
