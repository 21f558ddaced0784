package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/san-kum/ventsim/internal/config"
	"github.com/san-kum/ventsim/internal/experiment"
	"github.com/san-kum/ventsim/internal/storage"
)

const (
	TypeSimulate = "simulate"
	TypePresets  = "presets"
	TypeResult   = "result"
	TypeError    = "error"
)

// Msg is both request and reply on the wire.
type Msg struct {
	Type string `json:"type"`
	// request
	Preset string          `json:"preset,omitempty"`
	Config json.RawMessage `json:"config,omitempty"`
	// reply
	Result  *storage.ExportData `json:"result,omitempty"`
	Presets []string            `json:"presets,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// hub owns the write side of one connection; gorilla connections allow a
// single concurrent writer.
type hub struct {
	conn    *websocket.Conn
	logger  *log.Entry
	replies chan Msg
}

func newHub(conn *websocket.Conn, logger *log.Entry) *hub {
	return &hub{
		conn:    conn,
		logger:  logger,
		replies: make(chan Msg, 10),
	}
}

func (h *hub) writeLoop() {
	for reply := range h.replies {
		if err := h.conn.WriteJSON(&reply); err != nil {
			h.logger.WithError(err).Debug("write failed")
		}
	}
}

func (h *hub) handle(ctx context.Context, msg Msg) Msg {
	switch msg.Type {
	case TypeSimulate:
		res, err := simulate(ctx, msg)
		if err != nil {
			h.logger.WithError(err).Info("simulation rejected")
			return Msg{Type: TypeError, Error: err.Error()}
		}
		return Msg{Type: TypeResult, Result: storage.NewExportData(res)}
	case TypePresets:
		return Msg{Type: TypePresets, Presets: config.ListPresets()}
	default:
		return Msg{Type: TypeError, Error: fmt.Sprintf("no such type: %q", msg.Type)}
	}
}

// simulate layers msg.Config over the named preset, or over the defaults.
func simulate(ctx context.Context, msg Msg) (*experiment.Result, error) {
	cfg := config.DefaultConfig()
	if msg.Preset != "" {
		if cfg = config.GetPreset(msg.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", msg.Preset)
		}
	}
	if len(msg.Config) > 0 {
		if err := json.Unmarshal(msg.Config, cfg); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	p, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	return experiment.SimulateContext(ctx, p)
}
