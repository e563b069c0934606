package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region service-desc

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "vigenere.v1.Analyzer"

const (
	methodAnalyze  = "/" + ServiceName + "/Analyze"
	methodDecipher = "/" + ServiceName + "/Decipher"
	methodEncipher = "/" + ServiceName + "/Encipher"
)

// AnalyzerServer is the server side of vigenere.v1.Analyzer. Messages are
// google.protobuf.Struct so no generated code is needed.
type AnalyzerServer interface {
	Analyze(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Decipher(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Encipher(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes vigenere.v1.Analyzer for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AnalyzerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Analyze", Handler: unaryHandler(methodAnalyze, AnalyzerServer.Analyze)},
		{MethodName: "Decipher", Handler: unaryHandler(methodDecipher, AnalyzerServer.Decipher)},
		{MethodName: "Encipher", Handler: unaryHandler(methodEncipher, AnalyzerServer.Encipher)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vigenere/v1/analyzer.proto",
}

// RegisterAnalyzerServer registers srv on s.
func RegisterAnalyzerServer(s grpc.ServiceRegistrar, srv AnalyzerServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type unaryMethod func(AnalyzerServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AnalyzerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(AnalyzerServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// #endregion service-desc

// #region service-client

// AnalyzerServiceClient is the client side of vigenere.v1.Analyzer.
type AnalyzerServiceClient interface {
	Analyze(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Decipher(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Encipher(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type analyzerServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAnalyzerServiceClient returns a client bound to cc.
func NewAnalyzerServiceClient(cc grpc.ClientConnInterface) AnalyzerServiceClient {
	return &analyzerServiceClient{cc: cc}
}

func (c *analyzerServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *analyzerServiceClient) Analyze(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodAnalyze, in, opts)
}

func (c *analyzerServiceClient) Decipher(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodDecipher, in, opts)
}

func (c *analyzerServiceClient) Encipher(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodEncipher, in, opts)
}

// #endregion service-client
