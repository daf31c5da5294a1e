package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{ReadBufferSize: 512, WriteBufferSize: 1024}

// clockWS：连接成为唯一的节拍监听者；新连接接管时旧连接收到关闭帧
func (s *server) clockWS(w http.ResponseWriter, r *http.Request) {
	if s.clock == nil {
		writeError(w, http.StatusServiceUnavailable, "clock disabled")
		return
	}
	sub, err := s.clock.Subscribe()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "clock stopped")
		return
	}
	defer sub.Cancel()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("ws_upgrade_error", "err", err)
		return
	}
	defer conn.Close()
	s.log.Debug("ws_clock_open", "ip", r.RemoteAddr)

	// 只读控制帧，用于感知对端关闭
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(time.Now().Add(pongWait)) })
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-done:
			s.log.Debug("ws_clock_closed", "ip", r.RemoteAddr)
			return
		case t, ok := <-sub.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "listener closed"))
				s.log.Debug("ws_clock_listener_closed", "ip", r.RemoteAddr)
				return
			}
			if err := conn.WriteJSON(t); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
