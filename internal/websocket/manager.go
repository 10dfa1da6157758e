package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"revision-history-server/internal/domain"
	"revision-history-server/pkg/logger"
)

type ManagerOptions struct {
	MaxConnPerUser int
	MaxMessageSize int64
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
}

type Manager struct {
	clients        map[string]*Client
	userIndex      map[string]map[string]struct{}
	clientsMutex   sync.RWMutex
	register       chan *Client
	unregister     chan *Client
	done           chan struct{}
	maxConnPerUser int
	maxMessageSize int64
	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
	logger         *slog.Logger
}

func NewManager(opts ManagerOptions, log *slog.Logger) *Manager {
	if log == nil {
		log = logger.Discard()
	}

	return &Manager{
		clients:        make(map[string]*Client),
		userIndex:      make(map[string]map[string]struct{}),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		done:           make(chan struct{}),
		maxConnPerUser: opts.MaxConnPerUser,
		maxMessageSize: opts.MaxMessageSize,
		writeWait:      opts.WriteWait,
		pongWait:       opts.PongWait,
		pingPeriod:     opts.PingPeriod,
		logger:         log,
	}
}

// Run serves registrations until ctx is done, then drops every client.
func (m *Manager) Run(ctx context.Context) {
	defer close(m.done)

	for {
		select {
		case client := <-m.register:
			m.registerClient(client)

		case client := <-m.unregister:
			m.unregisterClient(client)

		case <-ctx.Done():
			m.closeAll()
			return
		}
	}
}

// Register hands the client to the run loop. After shutdown the client is
// closed straight away.
func (m *Manager) Register(client *Client) {
	select {
	case m.register <- client:
	case <-m.done:
		close(client.Send)
	}
}

func (m *Manager) Unregister(client *Client) {
	select {
	case m.unregister <- client:
	case <-m.done:
	}
}

func (m *Manager) registerClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if m.userIndex[client.UserID] == nil {
		m.userIndex[client.UserID] = make(map[string]struct{})
	}

	if m.maxConnPerUser > 0 && len(m.userIndex[client.UserID]) >= m.maxConnPerUser {
		m.logger.Warn("max connections reached", "user_id", client.UserID)
		close(client.Send)
		return
	}

	m.clients[client.ID] = client
	m.userIndex[client.UserID][client.ID] = struct{}{}

	m.logger.Info("client registered", "client_id", client.ID, "user_id", client.UserID)
}

func (m *Manager) unregisterClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	m.removeLocked(client)
}

func (m *Manager) removeLocked(client *Client) {
	if _, ok := m.clients[client.ID]; !ok {
		return
	}

	delete(m.clients, client.ID)
	delete(m.userIndex[client.UserID], client.ID)
	if len(m.userIndex[client.UserID]) == 0 {
		delete(m.userIndex, client.UserID)
	}

	close(client.Send)
	m.logger.Info("client unregistered", "client_id", client.ID)
}

func (m *Manager) closeAll() {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	for _, client := range m.clients {
		m.removeLocked(client)
	}
}

func (m *Manager) handleMessage(client *Client, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		m.logger.Warn("invalid websocket message", "client_id", client.ID, "error", err)
		m.sendTo(client, TypeError, &ErrorPayload{Error: "invalid message"})
		return
	}

	switch msg.Type {
	case TypePing:
		m.sendTo(client, TypePong, nil)
	default:
		m.logger.Debug("ignoring websocket message", "client_id", client.ID, "type", msg.Type)
	}
}

func (m *Manager) sendTo(client *Client, msgType MessageType, payload interface{}) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	if _, ok := m.clients[client.ID]; !ok {
		return
	}

	select {
	case client.Send <- data:
	default:
		m.logger.Warn("client send buffer full", "client_id", client.ID)
	}
}

// BroadcastToUser delivers message to every connection of the user.
// Connections whose buffer is full are dropped.
func (m *Manager) BroadcastToUser(userID string, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	var stale []*Client

	m.clientsMutex.RLock()
	for clientID := range m.userIndex[userID] {
		client := m.clients[clientID]
		select {
		case client.Send <- data:
		default:
			stale = append(stale, client)
		}
	}
	m.clientsMutex.RUnlock()

	for _, client := range stale {
		m.logger.Warn("client send buffer full, closing connection", "client_id", client.ID)
		m.unregisterClient(client)
	}

	return nil
}

func (m *Manager) NotifyRevisionCreated(ctx context.Context, userUUID string, revision *domain.RevisionSimpleResponse) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := NewMessage(TypeRevisionCreated, revision)
	if err != nil {
		return err
	}
	return m.BroadcastToUser(userUUID, msg)
}

func (m *Manager) UserConnections(userID string) int {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	return len(m.userIndex[userID])
}
