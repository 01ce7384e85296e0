package cache

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// ValkeyConfig holds connection parameters for a Valkey/Redis-compatible
// server.
type ValkeyConfig struct {
	Addr         string
	Username     string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	TLS          bool
}

// ValkeyProvider implements Provider against a Valkey server using a
// minimal RESP client. Connections are dialed per operation; the query
// volume here is a dashboard poll every few seconds, not a hot path.
type ValkeyProvider struct {
	cfg ValkeyConfig
}

// NewValkeyProvider validates connectivity with a PING and returns the
// provider, failing fast on bad credentials or an unreachable server.
func NewValkeyProvider(cfg ValkeyConfig) (*ValkeyProvider, error) {
	if cfg.Addr == "" {
		return nil, errors.New("valkey addr is required")
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 2 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 500 * time.Millisecond
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 500 * time.Millisecond
	}

	p := &ValkeyProvider{cfg: cfg}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if _, err := p.do(ctx, "PING"); err != nil {
		return nil, fmt.Errorf("valkey ping: %w", err)
	}
	return p, nil
}

// Get fetches bytes by key, returning ErrCacheMiss when the key is absent.
func (p *ValkeyProvider) Get(ctx context.Context, key string) ([]byte, error) {
	reply, err := p.do(ctx, "GET", key)
	if err != nil {
		return nil, err
	}
	if reply == nil {
		return nil, ErrCacheMiss
	}
	return reply, nil
}

// Set stores bytes under key with the provided TTL.
func (p *ValkeyProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := []string{"SET", key, string(value)}
	if ttl > 0 {
		args = append(args, "PX", strconv.FormatInt(ttl.Milliseconds(), 10))
	}
	_, err := p.do(ctx, args...)
	return err
}

// Del removes a key.
func (p *ValkeyProvider) Del(ctx context.Context, key string) error {
	_, err := p.do(ctx, "DEL", key)
	return err
}

// Close is a no-op: connections are not pooled.
func (p *ValkeyProvider) Close() error { return nil }

// do dials, authenticates, selects the DB, issues one command, and reads
// its reply.
func (p *ValkeyProvider) do(ctx context.Context, args ...string) ([]byte, error) {
	dialer := net.Dialer{Timeout: p.cfg.DialTimeout}
	var conn net.Conn
	var err error
	if p.cfg.TLS {
		td := tls.Dialer{NetDialer: &dialer}
		conn, err = td.DialContext(ctx, "tcp", p.cfg.Addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", p.cfg.Addr)
	}
	if err != nil {
		return nil, fmt.Errorf("dial valkey %s: %w", p.cfg.Addr, err)
	}
	defer conn.Close()

	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))

	if p.cfg.Password != "" {
		auth := []string{"AUTH", p.cfg.Password}
		if p.cfg.Username != "" {
			auth = []string{"AUTH", p.cfg.Username, p.cfg.Password}
		}
		if _, err := p.roundTrip(conn, rw, auth...); err != nil {
			return nil, fmt.Errorf("valkey auth: %w", err)
		}
	}
	if p.cfg.DB != 0 {
		if _, err := p.roundTrip(conn, rw, "SELECT", strconv.Itoa(p.cfg.DB)); err != nil {
			return nil, fmt.Errorf("valkey select db: %w", err)
		}
	}
	return p.roundTrip(conn, rw, args...)
}

func (p *ValkeyProvider) roundTrip(conn net.Conn, rw *bufio.ReadWriter, args ...string) ([]byte, error) {
	conn.SetWriteDeadline(time.Now().Add(p.cfg.WriteTimeout))
	fmt.Fprintf(rw, "*%d\r\n", len(args))
	for _, arg := range args {
		fmt.Fprintf(rw, "$%d\r\n%s\r\n", len(arg), arg)
	}
	if err := rw.Flush(); err != nil {
		return nil, err
	}

	conn.SetReadDeadline(time.Now().Add(p.cfg.ReadTimeout))
	return readReply(rw.Reader)
}

// readReply parses a single RESP reply. Nil bulk strings come back as a nil
// slice with no error.
func readReply(r *bufio.Reader) ([]byte, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	if len(line) == 0 {
		return nil, errors.New("empty valkey reply")
	}

	switch line[0] {
	case '+':
		return []byte(line[1:]), nil
	case ':':
		return []byte(line[1:]), nil
	case '-':
		return nil, fmt.Errorf("valkey error: %s", line[1:])
	case '$':
		length, err := strconv.Atoi(line[1:])
		if err != nil {
			return nil, fmt.Errorf("bad bulk length %q", line[1:])
		}
		if length < 0 {
			return nil, nil
		}
		buf := make([]byte, length+2)
		if _, err := readFull(r, buf); err != nil {
			return nil, err
		}
		return buf[:length], nil
	default:
		return nil, fmt.Errorf("unsupported valkey reply %q", line)
	}
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	if len(line) < 2 || line[len(line)-2] != '\r' {
		return "", fmt.Errorf("malformed valkey line %q", line)
	}
	return line[:len(line)-2], nil
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	read := 0
	for read < len(buf) {
		n, err := r.Read(buf[read:])
		if err != nil {
			return read, err
		}
		read += n
	}
	return read, nil
}
