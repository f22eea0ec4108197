package socket

import (
	"log"

	socketio "github.com/googollee/go-socket.io"
)

// Server wraps the socket.io server and fans reveal events out to per-member
// rooms. It satisfies the engine's NotificationEmitter interface.
type Server struct {
	IO *socketio.Server
}

// NewServer initializes the socket.io server and its event handlers.
func NewServer() *Server {
	io := socketio.NewServer(nil)

	io.OnConnect("/", func(c socketio.Conn) error {
		log.Println("✅ Socket connected:", c.ID())
		return nil
	})

	// Clients subscribe with their member id to receive reveal events.
	io.OnEvent("/", "subscribe", func(c socketio.Conn, memberID string) {
		if memberID == "" {
			log.Println("❌ Invalid memberId in subscribe request")
			return
		}
		log.Printf("👥 Socket %s subscribed as member %s\n", c.ID(), memberID)
		c.Join(memberRoom(memberID))
	})

	io.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Println("❌ Socket disconnected:", c.ID(), reason)
	})

	return &Server{IO: io}
}

// EmitRevealed notifies both participants that their match has been revealed.
// Best-effort: a member without an open socket simply misses the push.
func (s *Server) EmitRevealed(matchID, memberA, memberB string) {
	payload := map[string]string{"matchId": matchID}
	for _, memberID := range []string{memberA, memberB} {
		s.IO.BroadcastToRoom("/", memberRoom(memberID), "aligned:revealed", payload)
	}
	log.Printf("📣 Reveal event for match %s sent to %s and %s", matchID, memberA, memberB)
}

func memberRoom(memberID string) string {
	return "member:" + memberID
}
