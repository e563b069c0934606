package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/analysis"
)

// #region client-struct
// Client wraps the gRPC connection to a remote analyzer.
type Client struct {
	conn   *grpc.ClientConn
	client AnalyzerServiceClient
}

// #endregion client-struct

// #region constructor
// NewClient connects to an analyzer gRPC server.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{
		conn:   conn,
		client: NewAnalyzerServiceClient(conn),
	}, nil
}

// NewClientWithService creates a Client with an injected service implementation.
// Used for testing without a real gRPC connection.
func NewClientWithService(svc AnalyzerServiceClient) *Client {
	return &Client{client: svc}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region analyze
// Analyze sends req to the server. On an analysis failure the partial result
// is returned with an error that still matches the errkind sentinels.
func (c *Client) Analyze(ctx context.Context, req analysis.Request) (Result, error) {
	in, err := encodeRequest(req)
	if err != nil {
		return Result{}, fmt.Errorf("analyze rpc: %w", err)
	}
	out, err := c.client.Analyze(ctx, in)
	if err != nil {
		detail, rpcErr := fromStatus("analyze", err)
		if detail == nil {
			return Result{}, rpcErr
		}
		partial, derr := decodeResult(detail)
		if derr != nil {
			return Result{}, rpcErr
		}
		return partial, rpcErr
	}
	res, err := decodeResult(out)
	if err != nil {
		return Result{}, fmt.Errorf("analyze rpc: %w", err)
	}
	return res, nil
}

// #endregion analyze

// #region transform
// Decipher applies a known key remotely.
func (c *Client) Decipher(ctx context.Context, text, key string, preserve bool) (string, error) {
	return c.transform(ctx, "decipher", c.client.Decipher, text, key, preserve)
}

// Encipher enciphers text remotely.
func (c *Client) Encipher(ctx context.Context, text, key string, preserve bool) (string, error) {
	return c.transform(ctx, "encipher", c.client.Encipher, text, key, preserve)
}

type unaryCall func(context.Context, *structpb.Struct, ...grpc.CallOption) (*structpb.Struct, error)

func (c *Client) transform(ctx context.Context, op string, call unaryCall, text, key string, preserve bool) (string, error) {
	in, err := structpb.NewStruct(map[string]interface{}{
		"text":            text,
		"key":             key,
		"preserve_format": preserve,
	})
	if err != nil {
		return "", fmt.Errorf("%s rpc: %w", op, err)
	}
	out, err := call(ctx, in)
	if err != nil {
		_, rpcErr := fromStatus(op, err)
		return "", rpcErr
	}
	return stringField(out, "text"), nil
}

// #endregion transform
