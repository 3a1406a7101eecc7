package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Service descriptor for rental.engine.v1.Engine as declared in
// api/proto/rental/engine/v1/engine.proto.

const (
	Engine_CheckAvailability_FullMethodName      = "/rental.engine.v1.Engine/CheckAvailability"
	Engine_SuggestDates_FullMethodName           = "/rental.engine.v1.Engine/SuggestDates"
	Engine_SuggestReducedQuantity_FullMethodName = "/rental.engine.v1.Engine/SuggestReducedQuantity"
	Engine_Quote_FullMethodName                  = "/rental.engine.v1.Engine/Quote"
	Engine_PlaceHold_FullMethodName              = "/rental.engine.v1.Engine/PlaceHold"
)

type EngineClient interface {
	CheckAvailability(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SuggestDates(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SuggestReducedQuantity(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Quote(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	PlaceHold(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type engineClient struct {
	cc grpc.ClientConnInterface
}

func NewEngineClient(cc grpc.ClientConnInterface) EngineClient {
	return &engineClient{cc}
}

func (c *engineClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *engineClient) CheckAvailability(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Engine_CheckAvailability_FullMethodName, in, opts)
}

func (c *engineClient) SuggestDates(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Engine_SuggestDates_FullMethodName, in, opts)
}

func (c *engineClient) SuggestReducedQuantity(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Engine_SuggestReducedQuantity_FullMethodName, in, opts)
}

func (c *engineClient) Quote(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Engine_Quote_FullMethodName, in, opts)
}

func (c *engineClient) PlaceHold(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Engine_PlaceHold_FullMethodName, in, opts)
}

// EngineServer is the server API for the Engine service.
type EngineServer interface {
	CheckAvailability(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SuggestDates(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SuggestReducedQuantity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Quote(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PlaceHold(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterEngineServer(s grpc.ServiceRegistrar, srv EngineServer) {
	s.RegisterService(&Engine_ServiceDesc, srv)
}

// unaryHandler adapts one EngineServer method to a grpc.MethodDesc handler.
func unaryHandler(fullMethod string, call func(EngineServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(EngineServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(EngineServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var Engine_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EngineServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CheckAvailability",
			Handler:    unaryHandler(Engine_CheckAvailability_FullMethodName, EngineServer.CheckAvailability),
		},
		{
			MethodName: "SuggestDates",
			Handler:    unaryHandler(Engine_SuggestDates_FullMethodName, EngineServer.SuggestDates),
		},
		{
			MethodName: "SuggestReducedQuantity",
			Handler:    unaryHandler(Engine_SuggestReducedQuantity_FullMethodName, EngineServer.SuggestReducedQuantity),
		},
		{
			MethodName: "Quote",
			Handler:    unaryHandler(Engine_Quote_FullMethodName, EngineServer.Quote),
		},
		{
			MethodName: "PlaceHold",
			Handler:    unaryHandler(Engine_PlaceHold_FullMethodName, EngineServer.PlaceHold),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rental/engine/v1/engine.proto",
}
