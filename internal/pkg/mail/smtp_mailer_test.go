package mail

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A server that accepts the connection but never sends the SMTP greeting
// must not hold the send past the context deadline.
func TestSendMailHonorsContextDeadline(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	t.Setenv("SMTP_HOST", host)
	t.Setenv("SMTP_PORT", port)
	t.Setenv("SMTP_SENDER", "alerts@bantay.ph")

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = SendMail(ctx, "citizen@example.com", "subject", "body")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}

// An unreachable host must fail at dial time, not hang.
func TestSendMailDialFailureIsImmediate(t *testing.T) {
	t.Setenv("SMTP_HOST", "127.0.0.1")
	t.Setenv("SMTP_PORT", "1") // nothing listens here
	t.Setenv("SMTP_SENDER", "alerts@bantay.ph")

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	err := SendMail(ctx, "citizen@example.com", "subject", "body")
	assert.Error(t, err)
}
