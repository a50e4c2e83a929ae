package service

import (
	"context"

	"connectrpc.com/connect"
)

// Client calls the procedures of a running server.
type Client struct {
	httpClient connect.HTTPClient
	baseURL    string
	token      string
}

// NewClient creates a client for the server at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string) *Client {
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

// WithToken returns a copy of c sending token as a Bearer credential.
func (c *Client) WithToken(token string) *Client {
	cc := *c
	cc.token = token
	return &cc
}

// Call invokes one unary procedure and returns its response message.
func Call[Req, Res any](ctx context.Context, c *Client, service, method string, msg *Req) (*Res, error) {
	rpc := connect.NewClient[Req, Res](
		c.httpClient,
		c.baseURL+Procedure(service, method),
		connect.WithCodec(JSONCodec{}),
	)

	req := connect.NewRequest(msg)
	if c.token != "" {
		req.Header().Set("Authorization", "Bearer "+c.token)
	}
	resp, err := rpc.CallUnary(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// Login exchanges the practitioner passcode for a client carrying a session token.
func (c *Client) Login(ctx context.Context, passcode string) (*Client, error) {
	resp, err := Call[LoginRequest, LoginResponse](ctx, c, AuthServiceName, "Login", &LoginRequest{Passcode: passcode})
	if err != nil {
		return nil, err
	}
	return c.WithToken(resp.Token), nil
}
