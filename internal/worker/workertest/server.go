package workertest

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/erizocosmico/ndstream/internal/proto"
	"github.com/erizocosmico/ndstream/internal/worker"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultMaxSize int32 = 200 * 1024 * 1024
)

// Server is a test implementation of a worker server.
type Server struct {
	Hooks
	network string
	addr    string
	maxSize int32
}

// Hooks provides hooks to intercept calls to the server.
type Hooks struct {
	OnHealthcheck func()
	OnInfo        func()
	OnFoldChunk   func(uuid.UUID, *proto.FoldData) ([]byte, error)
}

// NewServer creates a new test worker server.
func NewServer(
	network, addr string,
	hooks Hooks,
) *Server {
	return &Server{
		Hooks:   hooks,
		network: network,
		addr:    addr,
		maxSize: defaultMaxSize,
	}
}

// Start listenning to connections.
func (s *Server) Start(ctx context.Context) error {
	l, err := net.Listen(s.network, s.addr)
	if err != nil {
		return err
	}

	defer l.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		conn, err := l.Accept()
		if err != nil {
			return err
		}

		s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	for {
		req, err := proto.ParseRequest(conn, s.maxSize)
		if err != nil {
			if err == io.EOF || proto.IsEOF(err) {
				break
			}

			s.writeError(conn, err)
			return
		}

		resp, err := s.handleRequest(ctx, conn, req)
		if err != nil {
			s.writeError(conn, err)
			continue
		}

		s.writeResponse(conn, &proto.Response{Type: proto.Ok, Data: resp})
	}
}

func (s *Server) info() worker.Info {
	return worker.Info{
		Version:     "test",
		Addr:        s.addr,
		Proto:       proto.Version,
		ActiveFolds: 0,
		Operators:   0,
	}
}

func (s *Server) handleRequest(
	ctx context.Context,
	conn net.Conn,
	r *proto.Request,
) ([]byte, error) {
	switch r.Op {
	case proto.FoldChunk:
		if s.OnFoldChunk != nil {
			fold, err := proto.ParseFoldData(r.Data)
			if err != nil {
				return nil, err
			}

			return s.OnFoldChunk(r.ID, fold)
		}

		return nil, fmt.Errorf("FoldChunk hook not provided")
	case proto.HealthCheck:
		if s.OnHealthcheck != nil {
			s.OnHealthcheck()
		}

		return nil, nil
	case proto.Info:
		if s.OnInfo != nil {
			s.OnInfo()
		}

		return s.info().Encode()
	default:
		return nil, proto.ErrInvalidOp
	}
}

func (s *Server) writeError(conn net.Conn, err error) {
	s.writeResponse(conn, &proto.Response{
		Type: proto.Error,
		Data: []byte(err.Error()),
	})
}

func (s *Server) writeResponse(conn net.Conn, r *proto.Response) {
	if err := proto.WriteResponse(r, conn); err != nil {
		logrus.WithField("err", err).Error("unable to write response")
	}
}
