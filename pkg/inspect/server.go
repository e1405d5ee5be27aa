// Package inspect serves a small HTTP surface for looking inside a
// running Canopy root: the committed instance tree with its layout
// boxes, mutation counters, and a websocket stream of those counters.
package inspect

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/canopy-ui/canopy/pkg/core"
)

// Server exposes inspection endpoints for one mounted root.
type Server struct {
	root *core.Root

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	conns    map[*websocket.Conn]struct{}

	upgrader websocket.Upgrader

	// StatsInterval is the push period of the /stats/live stream.
	// Defaults to one second.
	StatsInterval time.Duration
}

// NewServer wraps a root for inspection. Start must be called separately.
func NewServer(root *core.Root) *Server {
	return &Server{
		root:          root,
		conns:         make(map[*websocket.Conn]struct{}),
		StatsInterval: time.Second,
		upgrader: websocket.Upgrader{
			// Local tooling connects from file:// pages and editors.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Start binds the server on the given port. Returns the actual port,
// which matters when port 0 requests an ephemeral one.
func (s *Server) Start(port int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		if s.listener != nil {
			return s.listener.Addr().(*net.TCPAddr).Port, nil
		}
		return port, nil
	}

	// Bind first to fail fast on port conflicts.
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return 0, fmt.Errorf("inspect server listen: %w", err)
	}
	actualPort := listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mux.HandleFunc("/tree", s.handleTree)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/stats/live", s.handleStatsLive)
	mux.HandleFunc("/health", s.handleHealth)

	server := &http.Server{Handler: mux}
	s.server = server
	s.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.mu.Lock()
			s.server = nil
			s.listener = nil
			s.mu.Unlock()
			fmt.Printf("inspect server error: %v\n", err)
		}
	}()

	return actualPort, nil
}

// Stop shuts the server down, waiting briefly for in-flight requests.
// Live websocket streams are hijacked connections that Shutdown will not
// touch, so they are closed explicitly.
func (s *Server) Stop() {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	conns := s.conns
	s.conns = make(map[*websocket.Conn]struct{})
	s.mu.Unlock()

	for conn := range conns {
		conn.Close()
	}
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}

// SafeFloat wraps a float64 so Inf and NaN survive JSON encoding. Layout
// bugs are exactly when you want the tree endpoint to keep working.
type SafeFloat float64

func (f SafeFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 1) {
		return []byte(`"Infinity"`), nil
	}
	if math.IsInf(v, -1) {
		return []byte(`"-Infinity"`), nil
	}
	if math.IsNaN(v) {
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(v)
}

// SafeBox is a JSON-safe layout box.
type SafeBox struct {
	X      SafeFloat `json:"x"`
	Y      SafeFloat `json:"y"`
	Width  SafeFloat `json:"width"`
	Height SafeFloat `json:"height"`
}

// treeJSON is the wire form of one instance snapshot.
type treeJSON struct {
	Type      string     `json:"type"`
	Component bool       `json:"component,omitempty"`
	Key       any        `json:"key,omitempty"`
	Depth     int        `json:"depth"`
	Dirty     bool       `json:"dirty,omitempty"`
	HookCount int        `json:"hookCount,omitempty"`
	Box       *SafeBox   `json:"box,omitempty"`
	Children  []treeJSON `json:"children,omitempty"`
}

// statsJSON is the wire form of the mutation counters.
type statsJSON struct {
	Commits int `json:"commits"`
	Creates int `json:"creates"`
	Appends int `json:"appends"`
	Patches int `json:"patches"`
	Removes int `json:"removes"`
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			http.Error(w, fmt.Sprintf("panic: %v", rec), http.StatusInternalServerError)
		}
	}()

	snapshot := s.root.TreeSnapshot()
	if snapshot == nil {
		http.Error(w, "no mounted tree", http.StatusServiceUnavailable)
		return
	}
	tree := toTreeJSON(snapshot)

	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(statsFrom(s.root.StatsSnapshot()))
}

// handleStatsLive upgrades to a websocket and pushes counter snapshots
// on StatsInterval until the peer goes away or Stop closes the stream.
func (s *Server) handleStatsLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	// Inbound frames are discarded, but the stream must keep reading so
	// close frames from the peer are processed and answered.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	interval := s.StatsInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteJSON(statsFrom(s.root.StatsSnapshot())); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func toTreeJSON(n *core.TreeNode) treeJSON {
	node := treeJSON{
		Type:      n.Type,
		Component: n.Component,
		Key:       safeKey(n.Key),
		Depth:     n.Depth,
		Dirty:     n.Dirty,
		HookCount: n.HookCount,
	}
	if n.HasBox {
		node.Box = &SafeBox{
			X:      SafeFloat(n.Box.X),
			Y:      SafeFloat(n.Box.Y),
			Width:  SafeFloat(n.Box.Width),
			Height: SafeFloat(n.Box.Height),
		}
	}
	for i := range n.Children {
		node.Children = append(node.Children, toTreeJSON(&n.Children[i]))
	}
	return node
}

// safeKey converts an element key to a JSON-safe value. Keys are usually
// strings or ints, but nothing stops callers from using richer types.
func safeKey(key any) any {
	if key == nil {
		return nil
	}
	switch key.(type) {
	case string, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, bool:
		return key
	default:
		return fmt.Sprintf("%v", key)
	}
}

func statsFrom(s core.Stats) statsJSON {
	return statsJSON{
		Commits: s.Commits,
		Creates: s.Creates,
		Appends: s.Appends,
		Patches: s.Patches,
		Removes: s.Removes,
	}
}
