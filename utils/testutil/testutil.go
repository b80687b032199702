package testutil

import (
	"net"
	"net/http"
)

// Cleanup contains a list of functions which are called to cleanup a fixture.
type Cleanup struct {
	funcs []func()
}

// Add adds functions to the cleanup list.
func (c *Cleanup) Add(f ...func()) {
	c.funcs = append(c.funcs, f...)
}

// Recover runs cleanup functions after a test exits with an exception.
func (c *Cleanup) Recover() {
	if err := recover(); err != nil {
		c.run()
	}
}

// Run runs cleanup functions when a test finishes running.
func (c *Cleanup) Run() {
	c.run()
}

func (c *Cleanup) run() {
	for _, f := range c.funcs {
		f()
	}
}

// StartServer starts an HTTP server with h. Returns the address the server is
// listening on, and a closure for stopping the server.
func StartServer(h http.Handler) (addr string, stop func()) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		panic(err)
	}
	s := &http.Server{Handler: h}
	go s.Serve(l)
	return l.Addr().String(), func() { s.Close() }
}
