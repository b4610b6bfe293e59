package smtp_client

import (
	"crypto/tls"
	"errors"
	"log/slog"
	"net/smtp"
	"strconv"
	"sync"
	"time"

	"github.com/knadh/smtppool"
)

var ErrNoServers = errors.New("no smtp server connection in the pool")

type SmtpClients struct {
	mu             sync.Mutex
	servers        SmtpServerList
	connectionPool []*smtppool.Pool
	poolServers    []SmtpServer
	counter        uint64
}

func NewSmtpClients(config SmtpServerList) (*SmtpClients, error) {
	sc := &SmtpClients{
		servers: config,
	}
	sc.connectionPool, sc.poolServers = initConnectionPool(config)
	if len(sc.connectionPool) < 1 {
		return nil, ErrNoServers
	}
	return sc, nil
}

func initConnectionPool(serverList SmtpServerList) ([]*smtppool.Pool, []SmtpServer) {
	connectionPools := []*smtppool.Pool{}
	servers := []SmtpServer{}
	for _, server := range serverList.Servers {
		pool, err := connectToPool(server)
		if err != nil {
			slog.Error("error setting up connection pool", slog.String("error", err.Error()), slog.String("server", server.Address()))
			continue
		}
		connectionPools = append(connectionPools, pool)
		servers = append(servers, server)
	}
	return connectionPools, servers
}

func connectToPool(server SmtpServer) (*smtppool.Pool, error) {
	auth := smtp.PlainAuth(
		"",
		server.AuthData.Username,
		server.AuthData.Password,
		server.Host,
	)
	if server.AuthData.Username == "" && server.AuthData.Password == "" {
		auth = nil
	}

	tlsOpts := &tls.Config{
		InsecureSkipVerify: server.InsecureSkipVerify,
		ServerName:         server.Host,
	}
	port, err := strconv.Atoi(server.Port)
	if err != nil {
		return nil, err
	}

	maxConns := server.Connections
	if maxConns < 1 {
		maxConns = 1
	}
	sendTimeout := time.Duration(server.SendTimeout) * time.Second
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}

	return smtppool.New(smtppool.Opt{
		Host:            server.Host,
		Port:            port,
		MaxConns:        maxConns,
		IdleTimeout:     sendTimeout,
		PoolWaitTimeout: sendTimeout,
		TLSConfig:       tlsOpts,
		Auth:            auth,
	})
}

// nextPool picks the pools round robin
func (sc *SmtpClients) nextPool() (int, *smtppool.Pool, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if len(sc.connectionPool) < 1 {
		sc.connectionPool, sc.poolServers = initConnectionPool(sc.servers)
		if len(sc.connectionPool) < 1 {
			return 0, nil, ErrNoServers
		}
	}
	sc.counter += 1
	index := int(sc.counter % uint64(len(sc.connectionPool)))
	return index, sc.connectionPool[index], nil
}

func (sc *SmtpClients) reconnect(index int, failed *smtppool.Pool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if index >= len(sc.connectionPool) || sc.connectionPool[index] != failed {
		// already replaced by another sender
		return
	}
	server := sc.poolServers[index]
	pool, err := connectToPool(server)
	if err != nil {
		slog.Error("cannot reconnect pool", slog.String("error", err.Error()), slog.String("server", server.Host))
		return
	}
	slog.Info("reconnected to pool", slog.String("server", server.Host))
	failed.Close()
	sc.connectionPool[index] = pool
}

func (sc *SmtpClients) Close() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	for _, pool := range sc.connectionPool {
		pool.Close()
	}
	sc.connectionPool = nil
}
