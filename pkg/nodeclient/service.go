package nodeclient

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the gRPC service name NodeService registers under, used to
// build the fully-qualified method path since there is no .proto-derived
// constant.
const ServiceName = "sfs.node.NodeService"

// ChecksumMethod is NodeService.Checksum's fully-qualified gRPC method path.
const ChecksumMethod = "/" + ServiceName + "/Checksum"

// ChecksumHandler is the server-side contract for NodeService.Checksum.
type ChecksumHandler interface {
	Checksum(ctx context.Context, req *ChecksumRequest) (*ChecksumResponse, error)
}

// serviceDesc builds the grpc.ServiceDesc by hand in place of what protoc
// would normally generate: one unary method, wired through the registered
// json codec rather than protobuf.
func serviceDesc() grpc.ServiceDesc {
	return grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*ChecksumHandler)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "Checksum",
				Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
					in := new(ChecksumRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					handler := srv.(ChecksumHandler)
					if interceptor == nil {
						return handler.Checksum(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ChecksumMethod}
					wrapped := func(ctx context.Context, req interface{}) (interface{}, error) {
						return handler.Checksum(ctx, req.(*ChecksumRequest))
					}
					return interceptor(ctx, in, info, wrapped)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "pkg/nodeclient/service.go",
	}
}

// RegisterNodeServiceServer registers handler as the NodeService
// implementation on s.
func RegisterNodeServiceServer(s *grpc.Server, handler ChecksumHandler) {
	desc := serviceDesc()
	s.RegisterService(&desc, handler)
}
