//go:build grpc

// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func init() {
	registerTransport(TransportGRPC, dialGRPC, listenGRPC)
}

func dialGRPC(ctx context.Context, addr string, o *dialOptions) (Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("transport: grpc dial: %w", err)
	}
	return &grpcClient{conn: conn, codec: o.codec}, nil
}

func listenGRPC(addr string, o *serverOptions) (Server, error) {
	return nil, fmt.Errorf("transport: grpc server not implemented; grpc is a client-only transport here")
}

// grpcClient adapts a *grpc.ClientConn to Client. It invokes methods
// generically via grpc.ClientConn.Invoke, which requires the peer to
// speak plain unary gRPC against the given method name — there is no
// protobuf service descriptor involved, matching CallRaw/Call's
// payload-agnostic contract.
type grpcClient struct {
	conn  *grpc.ClientConn
	codec Codec
}

func (c *grpcClient) Call(ctx context.Context, method string, args, reply any) error {
	return c.conn.Invoke(ctx, method, args, reply)
}

func (c *grpcClient) CallRaw(ctx context.Context, method string, payload []byte) ([]byte, error) {
	var resp []byte
	err := c.conn.Invoke(ctx, method, payload, &resp)
	return resp, err
}

func (c *grpcClient) Notify(ctx context.Context, method string, args any) error {
	return c.conn.Invoke(ctx, method, args, nil)
}

func (c *grpcClient) Close() error {
	return c.conn.Close()
}
