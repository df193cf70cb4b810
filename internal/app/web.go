// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/relabs-tech/headtracker/internal/calibration"
	"github.com/relabs-tech/headtracker/internal/config"
	"github.com/relabs-tech/headtracker/internal/orientation"
	"github.com/relabs-tech/headtracker/internal/readout"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

const wsWriteTimeout = time.Second

// hub fans pose messages out to websocket clients.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	logger  *zap.SugaredLogger
}

func newHub(logger *zap.SugaredLogger) *hub {
	return &hub{clients: make(map[*websocket.Conn]struct{}), logger: logger}
}

func (h *hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnf("web: websocket upgrade error: %v", err)
		return
	}
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	h.logger.Debugf("web: websocket client %s connected", conn.RemoteAddr())

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.drop(conn)
			return
		}
	}
}

func (h *hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
		h.logger.Debugf("web: websocket client %s disconnected", conn.RemoteAddr())
	}
}

func (h *hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

// webServer keeps the latest pose and status seen on MQTT and serves them.
type webServer struct {
	mu         sync.RWMutex
	lastPose   orientation.Pose
	havePose   bool
	lastStatus *Status

	hub         *hub
	sendCommand func(Command) error
	logger      *zap.SugaredLogger
}

func newWebServer(sendCommand func(Command) error, logger *zap.SugaredLogger) *webServer {
	return &webServer{
		hub:         newHub(logger),
		sendCommand: sendCommand,
		logger:      logger,
	}
}

func (s *webServer) onPose(payload []byte) {
	var p orientation.Pose
	if err := json.Unmarshal(payload, &p); err != nil {
		s.logger.Warnf("web: pose unmarshal error: %v", err)
		return
	}
	s.mu.Lock()
	s.lastPose = p
	s.havePose = true
	s.mu.Unlock()
	s.hub.broadcast(payload)
}

func (s *webServer) onStatus(payload []byte) {
	var st Status
	if err := json.Unmarshal(payload, &st); err != nil {
		s.logger.Warnf("web: status unmarshal error: %v", err)
		return
	}
	s.mu.Lock()
	s.lastStatus = &st
	s.mu.Unlock()
}

func (s *webServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/orientation", s.handleOrientation)
	mux.HandleFunc("GET /api/orientation.png", s.handleOrientationPNG)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/reset", s.handleCommand(ActionReset))
	mux.HandleFunc("POST /api/calibrate", s.handleCommand(ActionCalibrate))
	mux.HandleFunc("GET /ws", s.hub.serveWS)
	mux.Handle("GET /", http.FileServer(http.Dir("web")))
	return mux
}

func (s *webServer) handleOrientation(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	pose, ok := s.lastPose, s.havePose
	s.mu.RUnlock()

	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, http.StatusOK, pose)
}

func (s *webServer) handleOrientationPNG(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	var pose *orientation.Pose
	if s.havePose {
		p := s.lastPose
		pose = &p
	}
	label := ""
	if s.lastStatus != nil {
		label = s.lastStatus.Filter
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := readout.EncodePNG(w, readout.Render(pose, label)); err != nil {
		s.logger.Warnf("web: %v", err)
	}
}

func (s *webServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	st := s.lastStatus
	s.mu.RUnlock()

	if st == nil {
		http.Error(w, "no status yet", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

// handleCommand forwards an action to the producer. The optional
// ?samples=N query sets the calibration sample count.
func (s *webServer) handleCommand(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd := Command{Action: action}
		if v := r.URL.Query().Get("samples"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 || n > calibration.MaxSamples {
				http.Error(w, fmt.Sprintf("samples must be an integer in 1..%d", calibration.MaxSamples), http.StatusBadRequest)
				return
			}
			cmd.Samples = n
		}
		if err := s.sendCommand(cmd); err != nil {
			s.logger.Warnf("web: %v", err)
			http.Error(w, "command not delivered", http.StatusBadGateway)
			return
		}
		s.writeJSON(w, http.StatusAccepted, cmd)
	}
}

func (s *webServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warnf("web: json encode error: %v", err)
	}
}

// RunWeb subscribes to the producer's topics and serves the HTTP API and the
// pose websocket on WEB_SERVER_PORT until SIGINT or SIGTERM.
func RunWeb(cfg *config.Config, logger *zap.SugaredLogger) error {
	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	pub := mqttPublisher{client: client}
	s := newWebServer(func(c Command) error {
		return pub.Publish(cfg.TopicCommand, false, c)
	}, logger)

	if err := subscribe(client, cfg.TopicPose, s.onPose, logger); err != nil {
		return err
	}
	if err := subscribe(client, cfg.TopicStatus, s.onStatus, logger); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		s.hub.closeAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("web: server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web: %w", err)
	}
	logger.Infof("web: shutting down")
	return nil
}
