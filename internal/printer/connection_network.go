package printer

import (
	"fmt"
	"net"
	"time"
)

const dialTimeout = 5 * time.Second

type networkConnection struct {
	conn net.Conn
}

func dialNetwork(host string, port int) (Connection, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to printer at %s: %w", addr, err)
	}

	return &networkConnection{conn: conn}, nil
}

func (c *networkConnection) Write(data []byte) (int, error) {
	return c.conn.Write(data)
}

func (c *networkConnection) Close() error {
	return c.conn.Close()
}
