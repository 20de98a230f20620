package notify

import (
	"fmt"
	"net"

	"github.com/rs/zerolog"
)

// LeaveSentinel is the reserved payload a listener sends to the group when it
// departs. The broadcaster never emits it, and listeners must not treat it as
// a ranking update.
const LeaveSentinel = "HOTELIER/LEAVE"

// IsLeaveSentinel reports whether a group datagram is the departure marker.
func IsLeaveSentinel(payload []byte) bool {
	return string(payload) == LeaveSentinel
}

// Broadcaster sends best-effort leader-change announcements to a UDP
// multicast group. Delivery is fire-and-forget, unordered, and may be lost;
// it never carries the full ranking.
type Broadcaster struct {
	conn *net.UDPConn
	log  *zerolog.Logger
}

// NewBroadcaster connects a datagram socket to the multicast group address,
// e.g. "239.255.32.32:4446".
func NewBroadcaster(groupAddr string, logger *zerolog.Logger) (*Broadcaster, error) {
	addr, err := net.ResolveUDPAddr("udp", groupAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve multicast group %s: %w", groupAddr, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("open multicast socket: %w", err)
	}
	return &Broadcaster{conn: conn, log: logger}, nil
}

// AnnounceLeader broadcasts a plain-text leader-change message for a city.
// Send failures are logged and swallowed.
func (b *Broadcaster) AnnounceLeader(city, hotelName string) {
	msg := fmt.Sprintf("New leader: %s is now first in %s", hotelName, city)
	if _, err := b.conn.Write([]byte(msg)); err != nil {
		b.log.Warn().Err(err).Str("city", city).Msg("leader broadcast failed")
		return
	}
	b.log.Debug().Str("city", city).Str("hotel", hotelName).Msg("leader broadcast sent")
}

// Close releases the datagram socket.
func (b *Broadcaster) Close() error {
	return b.conn.Close()
}
