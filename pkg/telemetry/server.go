package telemetry

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/hightide-robotics/reefbot/internal/log"
)

// Server is the dashboard server.
type Server struct {
	app       *fiber.App
	addr      string
	verbosity Verbosity

	stateMu sync.RWMutex
	state   State

	stateHub *Hub

	// OnDriveCommand receives teleop drive requests from websocket
	// clients. Nil means teleop over telemetry is disabled.
	OnDriveCommand func(DriveCommand)
}

// NewServer creates the dashboard server listening on addr.
func NewServer(addr string, verbosity Verbosity) *Server {
	s := &Server{
		addr:      addr,
		verbosity: verbosity,
		stateHub:  newHub("state"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "reefbot dashboard",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	app.Get("/status", s.handleStatus)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/state", websocket.New(s.handleStateSocket))
	app.Get("/ws/drive", websocket.New(s.handleDriveSocket))

	s.app = app
	return s
}

// Run starts the hub and serves until Shutdown. Blocks.
func (s *Server) Run() error {
	go s.stateHub.run()
	log.Info("dashboard listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown stops the HTTP server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Publish records the latest drive state and broadcasts it according to
// the configured verbosity. Called once per control tick.
func (s *Server) Publish(state State) {
	if s.verbosity == None {
		return
	}
	if s.verbosity == Low {
		state = State{Pose: state.Pose, Tick: state.Tick}
	}

	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()

	if err := s.stateHub.BroadcastJSON(state); err != nil {
		log.Warn("telemetry encode failed", "err", err)
	}
}

// handleStatus returns the latest published state.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return c.JSON(s.state)
}

// handleStateSocket subscribes one client to the state stream.
func (s *Server) handleStateSocket(conn *websocket.Conn) {
	newClient(s.stateHub, conn).serve()
}

// handleDriveSocket reads teleop drive commands until the connection
// closes. Malformed frames are skipped; dropping the whole connection for
// one bad frame would strand the driver mid-match.
func (s *Server) handleDriveSocket(conn *websocket.Conn) {
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd DriveCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			log.Warn("bad drive command frame", "err", err)
			continue
		}
		if s.OnDriveCommand != nil {
			s.OnDriveCommand(cmd)
		}
	}
}
