// Package clearmob implements the gRPC transport of the clearmob daemon.
//
// The ClearMobService is described by a hand-written grpc.ServiceDesc whose
// messages are protobuf well-known types (Struct, Empty, StringValue), so no
// code generation step is needed. The package provides the service descriptor,
// a typed client stub and a server that adapts a business-service interface.
package clearmob
