package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"

	"suimu/internal/boundary"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, client: rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// GetMaybeMusicByCSVPath loads csvPath in the daemon. The error return only
// reports transport problems; load failures arrive inside the envelope.
func (c *Client) GetMaybeMusicByCSVPath(csvPath string) (boundary.MaybeMusicResult, error) {
	var resp boundary.MaybeMusicResult
	err := c.client.Call(ServiceName+".GetMaybeMusicByCSVPath", GetMaybeMusicRequest{CSVPath: csvPath}, &resp)
	return resp, err
}

// Invoke dispatches command with args marshaled to JSON and returns the raw
// envelope.
func (c *Client) Invoke(command string, args any) (json.RawMessage, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode args: %w", err)
	}
	var resp InvokeResponse
	if err := c.client.Call(ServiceName+".Invoke", InvokeRequest{Command: command, Args: raw}, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call(ServiceName+".Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
