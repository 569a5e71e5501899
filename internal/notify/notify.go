package notify

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"sync"
)

const (
	RegisterMessageType = "register"
	NewGameMessageType  = "new_game"
)

// RegisterMessage is the datagram a client sends to start receiving
// new-title announcements.
type RegisterMessage struct {
	Type     string `json:"type"`
	ClientID string `json:"client_id"`
}

// NewGameMessage announces one title seen for the first time during an
// import run.
type NewGameMessage struct {
	Type   string `json:"type"`
	GameID string `json:"game_id"`
	Name   string `json:"name"`
}

type Client struct {
	ClientID string
	Addr     *net.UDPAddr
}

type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

func (r *Registry) Register(clientID string, addr *net.UDPAddr) {
	if clientID == "" || addr == nil {
		return
	}
	r.mu.Lock()
	r.clients[clientID] = Client{ClientID: clientID, Addr: addr}
	r.mu.Unlock()
}

func (r *Registry) Remove(clientID string) {
	r.mu.Lock()
	delete(r.clients, clientID)
	r.mu.Unlock()
}

func (r *Registry) Snapshot() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]Client, 0, len(r.clients))
	for _, client := range r.clients {
		clients = append(clients, client)
	}
	return clients
}

type Server struct {
	addr     string
	registry *Registry
	logger   *log.Logger

	mu     sync.Mutex
	conn   *net.UDPConn
	closed bool
}

func NewServer(addr string, registry *Registry, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{addr: addr, registry: registry, logger: logger}
}

func (s *Server) Run() error {
	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer conn.Close()

	s.logger.Printf("[notify] UDP server listening on %s", s.addr)

	buffer := make([]byte, 2048)
	for {
		n, addr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return err
		}
		msg, err := parseRegisterMessage(buffer[:n])
		if err != nil {
			s.logger.Printf("[notify] invalid datagram from %s: %v", addr, err)
			continue
		}
		if msg.Type != RegisterMessageType {
			continue
		}
		s.registry.Register(msg.ClientID, addr)
		s.logger.Printf("[notify] registered client %s (%s)", msg.ClientID, addr)
	}
}

// Close stops the receive loop.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// BroadcastNewGame pushes a new-title announcement to every registered
// client. Best effort; a client that fails twice is dropped.
func (s *Server) BroadcastNewGame(gameID, name string) {
	s.mu.Lock()
	running := s.conn != nil
	s.mu.Unlock()
	if !running {
		s.logger.Printf("[notify] server not running")
		return
	}
	payload, err := json.Marshal(NewGameMessage{
		Type:   NewGameMessageType,
		GameID: gameID,
		Name:   name,
	})
	if err != nil {
		s.logger.Printf("[notify] marshal broadcast: %v", err)
		return
	}

	for _, client := range s.registry.Snapshot() {
		s.sendWithRetry(client, payload)
	}
}

func (s *Server) sendWithRetry(client Client, payload []byte) {
	if err := s.sendOnce(client, payload); err == nil {
		return
	}
	if err := s.sendOnce(client, payload); err != nil {
		s.logger.Printf("[notify] dropping client %s at %s: %v", client.ClientID, client.Addr, err)
		s.registry.Remove(client.ClientID)
	}
}

func (s *Server) sendOnce(client Client, payload []byte) error {
	if client.Addr == nil {
		return errors.New("missing client address")
	}
	_, err := s.conn.WriteToUDP(payload, client.Addr)
	return err
}

func parseRegisterMessage(data []byte) (RegisterMessage, error) {
	var msg RegisterMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, err
	}
	if msg.ClientID == "" || msg.Type == "" {
		return msg, errors.New("missing required fields")
	}
	return msg, nil
}
