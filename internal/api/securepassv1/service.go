// Package securepassv1 holds the gRPC service description and client stub for
// the securepass.v1.SecurePass service. Messages are google.protobuf.Struct
// values with the same JSON-shaped fields as the HTTP API.
package securepassv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "securepass.v1.SecurePass"

// Full method names.
const (
	SignupFullMethodName      = "/" + ServiceName + "/Signup"
	LoginFullMethodName       = "/" + ServiceName + "/Login"
	UpdateVaultFullMethodName = "/" + ServiceName + "/UpdateVault"
)

// SecurePassClient is the client API for the SecurePass service.
type SecurePassClient interface {
	Signup(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	UpdateVault(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type securePassClient struct {
	cc grpc.ClientConnInterface
}

// NewSecurePassClient returns a client bound to cc.
func NewSecurePassClient(cc grpc.ClientConnInterface) SecurePassClient {
	return &securePassClient{cc: cc}
}

func (c *securePassClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *securePassClient) Signup(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SignupFullMethodName, in, opts)
}

func (c *securePassClient) Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, LoginFullMethodName, in, opts)
}

func (c *securePassClient) UpdateVault(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, UpdateVaultFullMethodName, in, opts)
}

// SecurePassServer is the server API for the SecurePass service.
// Implementations should embed UnimplementedSecurePassServer.
type SecurePassServer interface {
	Signup(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateVault(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedSecurePassServer answers every method with codes.Unimplemented.
type UnimplementedSecurePassServer struct{}

func (UnimplementedSecurePassServer) Signup(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Signup not implemented")
}

func (UnimplementedSecurePassServer) Login(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}

func (UnimplementedSecurePassServer) UpdateVault(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateVault not implemented")
}

// RegisterSecurePassServer registers srv on s.
func RegisterSecurePassServer(s grpc.ServiceRegistrar, srv SecurePassServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type unaryMethod func(SecurePassServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a SecurePassServer method to grpc.MethodHandler.
func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SecurePassServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SecurePassServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc is the grpc.ServiceDesc for the SecurePass service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SecurePassServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Signup", Handler: unaryHandler(SignupFullMethodName, SecurePassServer.Signup)},
		{MethodName: "Login", Handler: unaryHandler(LoginFullMethodName, SecurePassServer.Login)},
		{MethodName: "UpdateVault", Handler: unaryHandler(UpdateVaultFullMethodName, SecurePassServer.UpdateVault)},
	},
	Streams: []grpc.StreamDesc{},
}
