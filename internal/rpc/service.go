// Package rpc exposes the clinic service over gRPC.
//
// Messages are google.protobuf.Struct values carrying the same JSON shapes
// as the HTTP contract, so no generated code is needed. List responses wrap
// their array in a single field (see RecordList and friends).
package rpc

import (
	"context"

	"heart-clinic/internal/middleware"
	"heart-clinic/internal/model"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "clinic.v1.ClinicService"

const (
	MethodLogin           = "Login"
	MethodPredict         = "Predict"
	MethodRecords         = "Records"
	MethodScheduleAppt    = "ScheduleAppointment"
	MethodAppointments    = "Appointments"
	MethodAddPrescription = "AddPrescription"
	MethodPrescriptions   = "Prescriptions"
	MethodChat            = "Chat"
)

// FullMethod returns the wire name of a method, e.g. /clinic.v1.ClinicService/Login.
func FullMethod(name string) string { return "/" + ServiceName + "/" + name }

// ClinicServer is implemented by Server.
type ClinicServer interface {
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Predict(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Records(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ScheduleAppointment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Appointments(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddPrescription(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Prescriptions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Chat(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type call func(ClinicServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, fn call) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if ic == nil {
				return fn(srv.(ClinicServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return ic(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return fn(srv.(ClinicServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ClinicServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodLogin, ClinicServer.Login),
		unary(MethodPredict, ClinicServer.Predict),
		unary(MethodRecords, ClinicServer.Records),
		unary(MethodScheduleAppt, ClinicServer.ScheduleAppointment),
		unary(MethodAppointments, ClinicServer.Appointments),
		unary(MethodAddPrescription, ClinicServer.AddPrescription),
		unary(MethodPrescriptions, ClinicServer.Prescriptions),
		unary(MethodChat, ClinicServer.Chat),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "clinic/v1/clinic.proto",
}

func RegisterClinicServer(s grpc.ServiceRegistrar, srv ClinicServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Policy is the auth policy for the service: Login is open, predictions and
// prescriptions are doctor-only, everything else takes any valid token.
func Policy() middleware.Policy {
	return middleware.Policy{
		Open: map[string]bool{FullMethod(MethodLogin): true},
		Roles: map[string][]model.Role{
			FullMethod(MethodPredict):         {model.RoleDoctor},
			FullMethod(MethodAddPrescription): {model.RoleDoctor},
		},
	}
}
