package matchadmin

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The MatchAdmin surface is small enough that its descriptor is written
// by hand over protobuf well-known types instead of a generated stub:
// requests are StringValue/Struct, responses are Struct.

const serviceName = "bookbuddy.v1.MatchAdmin"

// MatchAdminServer is the server API for the MatchAdmin service.
type MatchAdminServer interface {
	// TriggerCycle runs one matching cycle. The request value is an
	// optional period id override; empty derives from the clock.
	TriggerCycle(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	// GetCycleReport returns the persisted report for a period id.
	GetCycleReport(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	// ListPairings pages through a user's pairing history.
	ListPairings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc is the grpc.ServiceDesc for the MatchAdmin service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*MatchAdminServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "TriggerCycle",
			Handler:    triggerCycleHandler,
		},
		{
			MethodName: "GetCycleReport",
			Handler:    getCycleReportHandler,
		},
		{
			MethodName: "ListPairings",
			Handler:    listPairingsHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "matchadmin",
}

func triggerCycleHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MatchAdminServer).TriggerCycle(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/TriggerCycle",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MatchAdminServer).TriggerCycle(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func getCycleReportHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MatchAdminServer).GetCycleReport(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/GetCycleReport",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MatchAdminServer).GetCycleReport(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func listPairingsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MatchAdminServer).ListPairings(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/ListPairings",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MatchAdminServer).ListPairings(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
