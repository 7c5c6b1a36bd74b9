// Package recorder exposes the recording manager over gRPC.
//
// The transport layer only validates requests and converts between the
// protobuf messages and the domain model; all business rules live in the
// service implementation behind the Service interface.
package recorder
