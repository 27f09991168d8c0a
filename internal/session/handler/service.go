package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the cart service. Requests and
// responses are google.protobuf.Struct documents.
const ServiceName = "omnipos.cart.v1.CartService"

const (
	MethodGetCatalog      = "GetCatalog"
	MethodGetCart         = "GetCart"
	MethodAddOne          = "AddOne"
	MethodChangeQuantity  = "ChangeQuantity"
	MethodRemoveLine      = "RemoveLine"
	MethodGetSummary      = "GetSummary"
	MethodListMovements   = "ListMovements"
	MethodWatchPromotions = "WatchPromotions"
)

type CartServiceServer interface {
	GetCatalog(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCart(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddOne(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ChangeQuantity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveLine(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListMovements(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WatchPromotions(*structpb.Struct, grpc.ServerStreamingServer[structpb.Struct]) error
}

type unaryCall func(CartServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CartServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(CartServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchPromotionsHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(CartServiceServer).WatchPromotions(in, &grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

var CartServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(MethodGetCatalog, CartServiceServer.GetCatalog),
		unaryMethod(MethodGetCart, CartServiceServer.GetCart),
		unaryMethod(MethodAddOne, CartServiceServer.AddOne),
		unaryMethod(MethodChangeQuantity, CartServiceServer.ChangeQuantity),
		unaryMethod(MethodRemoveLine, CartServiceServer.RemoveLine),
		unaryMethod(MethodGetSummary, CartServiceServer.GetSummary),
		unaryMethod(MethodListMovements, CartServiceServer.ListMovements),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    MethodWatchPromotions,
			Handler:       watchPromotionsHandler,
			ServerStreams: true,
		},
	},
	Metadata: "omnipos/cart/v1/cart.proto",
}

func RegisterCartServiceServer(s grpc.ServiceRegistrar, srv CartServiceServer) {
	s.RegisterService(&CartServiceDesc, srv)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// CartClient is the caller side of CartServiceDesc.
type CartClient struct {
	cc grpc.ClientConnInterface
}

func NewCartClient(cc grpc.ClientConnInterface) *CartClient {
	return &CartClient{cc: cc}
}

func (c *CartClient) call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartClient) GetCatalog(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, MethodGetCatalog, nil, opts...)
}

func (c *CartClient) GetCart(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, MethodGetCart, nil, opts...)
}

func (c *CartClient) AddOne(ctx context.Context, productID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]any{"product_id": productID})
	if err != nil {
		return nil, err
	}
	return c.call(ctx, MethodAddOne, in, opts...)
}

func (c *CartClient) ChangeQuantity(ctx context.Context, productID string, delta int, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]any{"product_id": productID, "delta": delta})
	if err != nil {
		return nil, err
	}
	return c.call(ctx, MethodChangeQuantity, in, opts...)
}

func (c *CartClient) RemoveLine(ctx context.Context, productID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]any{"product_id": productID})
	if err != nil {
		return nil, err
	}
	return c.call(ctx, MethodRemoveLine, in, opts...)
}

func (c *CartClient) GetSummary(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, MethodGetSummary, nil, opts...)
}

// ListMovements takes an optional filter document with product_id,
// movement_type, page and page_size keys.
func (c *CartClient) ListMovements(ctx context.Context, filter *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, MethodListMovements, filter, opts...)
}

// WatchPromotions subscribes to promotion events. An empty kind receives all
// of them.
func (c *CartClient) WatchPromotions(ctx context.Context, kind string, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &CartServiceDesc.Streams[0], fullMethod(MethodWatchPromotions), opts...)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if kind != "" {
		fields["kind"] = kind
	}
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}

	x := &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
