package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-imap/client"
	"github.com/opentracing/opentracing-go"

	"github.com/customeros/mailvault/internal/tracing"
)

// connect establishes a TLS connection to the configured IMAP server and
// logs in.
func (s *IMAPSource) connect(ctx context.Context) (*client.Client, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPSource.connect")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("server", s.config.Server)
	span.SetTag("port", s.config.Port)

	serverAddr := fmt.Sprintf("%s:%d", s.config.Server, s.config.Port)

	// Set up connection with timeout
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	tlsConfig := &tls.Config{
		ServerName: s.config.Server,
	}

	c, err := client.DialWithDialerTLS(dialer, serverAddr, tlsConfig)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, fmt.Errorf("failed to connect to %s: %w", serverAddr, err)
	}

	// Set client timeout for login
	c.Timeout = 30 * time.Second

	err = c.Login(s.config.Email, s.config.Password)
	if err != nil {
		c.Logout()
		tracing.TraceErr(span, err)
		return nil, fmt.Errorf("failed to login as %s: %w", s.config.Email, err)
	}

	// Reset client timeout to default
	c.Timeout = 0

	s.log.Infof("Connected and logged in to %s", serverAddr)
	span.SetTag("success", true)

	return c, nil
}

// disconnect logs out without blocking fetch completion for long
func (s *IMAPSource) disconnect(c *client.Client) {
	if c == nil {
		return
	}

	logoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.Timeout = 5 * time.Second

	done := make(chan error, 1)
	go func() {
		done <- c.Logout()
		close(done)
	}()

	select {
	case err := <-done:
		if err != nil {
			s.log.Warnf("Error during logout: %v", err)
		}
	case <-logoutCtx.Done():
		s.log.Warnf("Logout timed out")
	}
}
