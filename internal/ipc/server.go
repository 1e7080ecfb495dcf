package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"suimu/internal/boundary"
	"suimu/internal/logging"
)

// StatusFunc reports daemon state for the Status method.
type StatusFunc func(ctx context.Context) StatusResponse

// Server exposes boundary commands via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer listens on path, replacing any stale socket file.
func NewServer(ctx context.Context, path string, svc *boundary.Service, status StatusFunc, logger *slog.Logger) (*Server, error) {
	if svc == nil {
		return nil, errors.New("ipc server requires a boundary service")
	}
	logger = logging.NewComponentLogger(logger, "ipc")

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	rpcServer := rpc.NewServer()
	handler := &service{svc: svc, status: status, logger: logger, ctx: serverCtx}
	if err := rpcServer.RegisterName(ServiceName, handler); err != nil {
		cancel()
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Path returns the socket path.
func (s *Server) Path() string {
	return s.path
}

// Serve accepts RPC connections in the background until Close.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
					return
				}
				logging.WarnWithContext(s.logger, "accept failed", "ipc_accept_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart suimu serve"),
				)
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops accepting, waits for in-flight connections and removes the
// socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		logging.WarnWithContext(s.logger, "failed to remove socket", "ipc_socket_cleanup_failed",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale IPC socket left on disk"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually"),
		)
	}
}

// service is the receiver registered with net/rpc. Its exported methods
// form the wire protocol.
type service struct {
	svc    *boundary.Service
	status StatusFunc
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) GetMaybeMusicByCSVPath(req GetMaybeMusicRequest, resp *boundary.MaybeMusicResult) error {
	ctx := logging.WithRequestID(s.ctx, req.RequestID)
	result, _ := s.svc.GetMaybeMusicByCSVPath(ctx, req.CSVPath)
	*resp = result
	return nil
}

func (s *service) Invoke(req InvokeRequest, resp *InvokeResponse) error {
	result, err := s.svc.Invoke(s.ctx, req.Command, req.Args)
	if err != nil {
		s.logger.Debug("invoke rejected",
			logging.String(logging.FieldCommand, req.Command),
			logging.Error(err),
		)
		return err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	resp.Result = data
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	if s.status != nil {
		*resp = s.status(s.ctx)
	}
	if resp.Commands == nil {
		resp.Commands = s.svc.Commands()
	}
	return nil
}
