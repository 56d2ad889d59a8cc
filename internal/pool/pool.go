package pool

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	workerlib "github.com/erizocosmico/ndstream/internal/worker"
	"github.com/sirupsen/logrus"
)

const spawnTimeout = 10 * time.Second

// Worker is a single worker the pool can fold chunks on. It may be a
// process the pool spawned itself or an externally started server the
// pool attached to.
type Worker struct {
	cli     *workerlib.Client
	network string
	addr    string
	cmd     *exec.Cmd
}

// Client returns the client connected to the worker.
func (w *Worker) Client() *workerlib.Client {
	return w.cli
}

// Addr returns the address the worker listens on.
func (w *Worker) Addr() string {
	return w.addr
}

func (w *Worker) close() error {
	var err error
	if w.cli != nil {
		err = w.cli.Close()
		w.cli = nil
	}

	if w.cmd != nil {
		if kerr := w.cmd.Process.Kill(); kerr != nil && err == nil {
			err = kerr
		}
		w.cmd.Wait()
		w.cmd = nil
	}

	return err
}

// Pool is a fixed set of workers. Workers spawned by the pool are torn
// down when the pool is closed; attached workers are left running and
// only their clients are closed.
type Pool struct {
	workers []*Worker
	dir     string
}

// Options provides configuration options for the pool.
type Options struct {
	// Binary is the worker binary to spawn. By default, the running
	// binary is used, which works as long as it registers the same
	// operators and wires the worker subcommand.
	Binary string
	// Network the spawned workers listen on. Spawned workers get socket
	// paths in a temporary directory, so only "unix" is supported; use
	// Attach for workers reachable over tcp.
	Network string
	// Client options used for the connections with the workers.
	Client *workerlib.ClientOptions
}

// Spawn starts n worker processes and waits until all of them answer
// health checks. On any failure the workers already started are torn
// down before returning.
func Spawn(n int, opts *Options) (*Pool, error) {
	if n < 1 {
		return nil, fmt.Errorf("pool: can't spawn %d workers", n)
	}

	var binary, network string
	var cliOpts *workerlib.ClientOptions
	if opts != nil {
		binary = opts.Binary
		network = opts.Network
		cliOpts = opts.Client
	}

	if binary == "" {
		var err error
		binary, err = os.Executable()
		if err != nil {
			return nil, fmt.Errorf("pool: can't resolve worker binary: %s", err)
		}
	}

	if network == "" {
		network = "unix"
	}

	if network != "unix" {
		return nil, fmt.Errorf("pool: can't spawn workers on %q, only unix sockets", network)
	}

	dir, err := os.MkdirTemp("", "ndstream-pool-")
	if err != nil {
		return nil, err
	}

	p := &Pool{dir: dir}
	for i := 0; i < n; i++ {
		addr := filepath.Join(dir, fmt.Sprintf("worker-%d.sock", i))
		w, err := spawnWorker(binary, network, addr, cliOpts)
		if err != nil {
			p.Close()
			return nil, err
		}

		p.workers = append(p.workers, w)
	}

	return p, nil
}

// Attach builds a pool over externally started workers. The pool does
// not manage their lifecycle, only the client connections.
func Attach(network string, addrs []string, cliOpts *workerlib.ClientOptions) (*Pool, error) {
	if len(addrs) == 0 {
		return nil, fmt.Errorf("pool: no worker addresses to attach to")
	}

	p := new(Pool)
	for _, addr := range addrs {
		cli, err := connect(network, addr, cliOpts)
		if err != nil {
			p.Close()
			return nil, err
		}

		p.workers = append(p.workers, &Worker{cli: cli, network: network, addr: addr})
	}

	return p, nil
}

func spawnWorker(binary, network, addr string, cliOpts *workerlib.ClientOptions) (*Worker, error) {
	cmd := exec.Command(binary, "worker", "start", "--network", network, addr)
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("pool: can't start worker at %s: %s", addr, err)
	}

	logrus.WithField("addr", addr).Debug("spawned worker process")

	cli, err := connect(network, addr, cliOpts)
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return nil, err
	}

	return &Worker{cli: cli, network: network, addr: addr, cmd: cmd}, nil
}

func connect(network, addr string, cliOpts *workerlib.ClientOptions) (*workerlib.Client, error) {
	var cli *workerlib.Client
	err := Retry(spawnTimeout, func() error {
		var err error
		cli, err = workerlib.NewClient(network, addr, cliOpts)
		if err != nil {
			return err
		}

		if err := cli.HealthCheck(); err != nil {
			cli.Close()
			cli = nil
			return err
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pool: worker at %s never became healthy: %s", addr, err)
	}

	return cli, nil
}

// Workers returns all the workers in the pool.
func (p *Pool) Workers() []*Worker {
	return p.workers
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Close tears down the pool: clients are closed, spawned processes are
// killed and their sockets removed.
func (p *Pool) Close() error {
	var err error
	for _, w := range p.workers {
		if cerr := w.close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	p.workers = nil

	if p.dir != "" {
		if rerr := os.RemoveAll(p.dir); rerr != nil && err == nil {
			err = rerr
		}
		p.dir = ""
	}

	return err
}
