package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client invokes ClinicService methods with plain Go request and response
// values.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Dial opens a plaintext connection; the portal and backend share a private
// network.
func Dial(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	return grpc.NewClient(addr, opts...)
}

// Call sends in (nil means an empty message) and decodes the reply into out
// (nil discards it).
func (c *Client) Call(ctx context.Context, method string, in, out any) error {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{}}
	if in != nil {
		var err error
		if req, err = ToStruct(in); err != nil {
			return err
		}
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), req, resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return FromStruct(resp, out)
}
