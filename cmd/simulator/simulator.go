package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// frame mirrors the stream protocol the dialogue engine speaks: typed
// JSON messages on a single bidirectional websocket.
type frame struct {
	Type    string `json:"type"`
	Event   *event `json:"event,omitempty"`
	Pause   bool   `json:"pause,omitempty"`
	Rule    string `json:"rule,omitempty"`
	Enabled bool   `json:"enabled,omitempty"`
	Grammar string `json:"grammar,omitempty"`
}

type event struct {
	Slots []slot `json:"slots"`
}

type slot struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// SimulatorConfig holds the simulator settings.
type SimulatorConfig struct {
	ListenAddr        string
	DefaultConfidence float64
}

// Simulator plays the speech engine's side of the stream protocol:
// engines connect over websocket, interactive commands become
// recognition events, and control frames from the engine (pause, rule
// toggles, grammar pushes) are tracked and honored.
type Simulator struct {
	config   *SimulatorConfig
	logger   *zap.Logger
	upgrader websocket.Upgrader
	server   *http.Server

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	paused  bool
	rules   map[string]bool
	grammar int // bytes of the last grammar push

	defaultConf float64
}

func NewSimulator(config *SimulatorConfig, logger *zap.Logger) *Simulator {
	return &Simulator{
		config:      config,
		logger:      logger,
		upgrader:    websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:     make(map[*websocket.Conn]bool),
		rules:       make(map[string]bool),
		defaultConf: config.DefaultConfidence,
	}
}

// Start begins serving the stream endpoint in the background.
func (s *Simulator) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/speech", s.handleStream)

	s.server = &http.Server{Addr: s.config.ListenAddr, Handler: mux}

	ln := make(chan error, 1)
	go func() {
		ln <- s.server.ListenAndServe()
	}()

	s.logger.Info("Simulator serving speech stream",
		zap.String("addr", s.config.ListenAddr),
		zap.String("path", "/speech"),
	)

	select {
	case err := <-ln:
		return err
	default:
		return nil
	}
}

func (s *Simulator) Stop() {
	if s.server != nil {
		s.server.Close()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		conn.Close()
	}
}

func (s *Simulator) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Upgrade failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	fmt.Printf("\n[engine connected: %s]\n> ", conn.RemoteAddr())

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
		fmt.Printf("\n[engine disconnected]\n> ")
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			s.logger.Warn("Malformed control frame", zap.Error(err))
			continue
		}
		s.handleControl(f)
	}
}

func (s *Simulator) handleControl(f frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch f.Type {
	case "pause":
		s.paused = f.Pause
		fmt.Printf("\n[input paused: %v]\n> ", f.Pause)
	case "rule":
		s.rules[f.Rule] = f.Enabled
		fmt.Printf("\n[rule %s -> %v]\n> ", f.Rule, f.Enabled)
	case "grammar":
		s.grammar = len(f.Grammar)
		fmt.Printf("\n[grammar reloaded: %d bytes]\n> ", s.grammar)
	}
}

// Send delivers a recognition event to every connected engine, unless
// input is paused.
func (s *Simulator) Send(ev *event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused {
		fmt.Println("(input is paused, event not sent)")
		return
	}
	if len(s.clients) == 0 {
		fmt.Println("(no engine connected)")
		return
	}

	data, err := json.Marshal(frame{Type: "event", Event: ev})
	if err != nil {
		return
	}
	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.logger.Warn("Event send failed", zap.Error(err))
		}
	}
}

// RunInteractive reads commands from stdin until quit/EOF.
func (s *Simulator) RunInteractive() {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Print("> ")
			continue
		}

		fields := splitQuoted(line)
		switch fields[0] {
		case "quit", "exit":
			s.Stop()
			return
		case "wake":
			s.Send(&event{Slots: []slot{{Name: "Action", Value: "WakeUp", Confidence: s.defaultConf}}})
		case "say":
			if ev := s.parseEvent(fields[1:], false); ev != nil {
				s.Send(ev)
			}
		case "prefix":
			if ev := s.parseEvent(fields[1:], true); ev != nil {
				s.Send(ev)
			}
		case "conf":
			if len(fields) == 2 {
				if v, err := strconv.ParseFloat(fields[1], 64); err == nil && v > 0 && v <= 1 {
					s.defaultConf = v
					fmt.Printf("default confidence = %.2f\n", v)
				} else {
					fmt.Println("usage: conf <0..1>")
				}
			}
		case "rules":
			s.mu.Lock()
			for rule, enabled := range s.rules {
				fmt.Printf("  %s: %v\n", rule, enabled)
			}
			s.mu.Unlock()
		case "state":
			s.mu.Lock()
			fmt.Printf("  paused: %v, clients: %d, last grammar: %d bytes\n",
				s.paused, len(s.clients), s.grammar)
			s.mu.Unlock()
		default:
			fmt.Println("unknown command:", fields[0])
		}
		fmt.Print("> ")
	}
}

// parseEvent turns "Action Slot=value@conf ..." into an event.
func (s *Simulator) parseEvent(fields []string, prefixed bool) *event {
	if len(fields) == 0 {
		fmt.Println("usage: say <Action> [Slot=value[@confidence]] ...")
		return nil
	}

	ev := &event{Slots: []slot{{Name: "Action", Value: fields[0], Confidence: s.defaultConf}}}
	for _, f := range fields[1:] {
		name, rest, ok := strings.Cut(f, "=")
		if !ok {
			fmt.Printf("bad slot %q, want Slot=value[@confidence]\n", f)
			return nil
		}
		value, confStr, hasConf := strings.Cut(rest, "@")
		conf := s.defaultConf
		if hasConf {
			v, err := strconv.ParseFloat(confStr, 64)
			if err != nil {
				fmt.Printf("bad confidence %q\n", confStr)
				return nil
			}
			conf = v
		}
		ev.Slots = append(ev.Slots, slot{Name: name, Value: strings.Trim(value, `"`), Confidence: conf})
	}
	if prefixed {
		ev.Slots = append(ev.Slots, slot{Name: "Prefixed", Value: "prefixed", Confidence: s.defaultConf})
	}
	return ev
}

// splitQuoted splits on spaces but keeps "quoted strings" together.
func splitQuoted(line string) []string {
	var out []string
	var cur strings.Builder
	inQuote := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case r == ' ' && !inQuote:
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}
