package worker

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"github.com/erizocosmico/ndstream/internal/proto"
	"github.com/sirupsen/logrus"
)

const (
	defaultMaxSize int32 = 200 * 1024 * 1024
)

// Server is a worker server that folds chunks of arrays on behalf of a
// coordinator.
type Server struct {
	network     string
	addr        string
	version     string
	maxSize     int32
	activeFolds int32
	conns       sync.WaitGroup
}

// ServerOptions provides configuration options for the worker server.
type ServerOptions struct {
	// MaxSize is the maximum allowed size for chunk data. By default, the
	// max size is 200MB.
	MaxSize int32
	// Version of the server.
	Version string
}

// NewServer creates a new worker server listening on the given network
// and address. MaxSize controls the maximum size allowed in request data.
func NewServer(
	network, addr string,
	opts *ServerOptions,
) *Server {
	maxSize := defaultMaxSize
	version := "unknown"
	if opts != nil {
		if opts.MaxSize > 0 {
			maxSize = opts.MaxSize
		}

		if opts.Version != "" {
			version = opts.Version
		}
	}
	return &Server{
		network: network,
		addr:    addr,
		maxSize: maxSize,
		version: version,
	}
}

// Start listenning to connections.
func (s *Server) Start(ctx context.Context) error {
	l, err := net.Listen(s.network, s.addr)
	if err != nil {
		return err
	}

	logrus.Infof("listenning for connections at %s", s.addr)

	defer func() {
		logrus.Infof("shutting down server")
		s.conns.Wait()
	}()

	var done = make(chan struct{})
	go func() {
		<-ctx.Done()
		close(done)
		l.Close()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-done:
				return nil
			default:
				return err
			}
		}

		log := logrus.WithField("addr", conn.RemoteAddr().String())
		log.Debugf("got a connection")

		s.conns.Add(1)
		go s.handleConn(ctx, conn, log)
	}
}

func (s *Server) incr() {
	atomic.AddInt32(&s.activeFolds, 1)
}

func (s *Server) decr() {
	atomic.AddInt32(&s.activeFolds, -1)
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn, log *logrus.Entry) {
	defer conn.Close()
	defer s.conns.Done()

	for {
		req, err := proto.ParseRequest(conn, s.maxSize)
		if err != nil {
			if proto.IsEOF(err) {
				break
			}

			s.writeError(conn, err)
			return
		}

		log.Debug("got a new request")

		resp, err := s.handleRequest(ctx, req)
		if err != nil {
			log.Errorf("request failed: %s", err)
			s.writeError(conn, err)
			continue
		}

		logrus.Debug("request was successful")

		s.writeResponse(conn, &proto.Response{Type: proto.Ok, Data: resp})
	}
}

func (s *Server) info() Info {
	return Info{
		Version:     s.version,
		Addr:        s.addr,
		Proto:       proto.Version,
		ActiveFolds: uint32(atomic.LoadInt32(&s.activeFolds)),
		Operators:   uint32(operatorCount()),
	}
}

func (s *Server) handleRequest(
	ctx context.Context,
	r *proto.Request,
) ([]byte, error) {
	switch r.Op {
	case proto.FoldChunk:
		s.incr()
		defer s.decr()

		fold, err := proto.ParseFoldData(r.Data)
		if err != nil {
			return nil, err
		}

		logrus.WithField("id", r.ID).
			WithField("operator", fold.Operator).
			Debug("folding chunk")

		return executeFold(fold)
	case proto.HealthCheck:
		return nil, nil
	case proto.Info:
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
