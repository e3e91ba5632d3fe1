// Package wol sends Wake-on-LAN magic packets. A host suspended by the
// daemon is typically woken this way from another machine on the network.
package wol

import (
	"bytes"
	"fmt"
	"net"

	"loadwatch/internal/logging"
)

// Sender handles sending Wake-on-LAN magic packets
type Sender struct {
	logger *logging.Logger
}

// NewSender creates a new magic packet sender
func NewSender(logger *logging.Logger) *Sender {
	return &Sender{logger: logger}
}

// SendMagicPacket sends a Wake-on-LAN magic packet to the specified MAC
// address. An empty broadcast address defaults to the local broadcast.
// The packet is sent on both standard WoL ports (7 and 9).
func (s *Sender) SendMagicPacket(targetMAC, broadcastAddr string) error {
	hwAddr, err := net.ParseMAC(targetMAC)
	if err != nil {
		return fmt.Errorf("invalid MAC address: %w", err)
	}

	packet, err := buildMagicPacket(hwAddr)
	if err != nil {
		return fmt.Errorf("failed to build magic packet: %w", err)
	}

	if broadcastAddr == "" {
		broadcastAddr = "255.255.255.255"
	}

	var lastErr error
	for _, port := range []int{7, 9} {
		addr := fmt.Sprintf("%s:%d", broadcastAddr, port)
		if err := s.sendUDP(addr, packet); err != nil {
			s.logger.Warn("Failed to send magic packet", map[string]interface{}{
				"port":      port,
				"broadcast": broadcastAddr,
				"error":     err.Error(),
			})
			lastErr = err
		} else {
			s.logger.Info("Magic packet sent", map[string]interface{}{
				"mac":       targetMAC,
				"broadcast": broadcastAddr,
				"port":      port,
			})
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to send magic packet: %w", lastErr)
	}

	return nil
}

// sendUDP sends the magic packet via UDP
func (s *Sender) sendUDP(addr string, packet []byte) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to resolve address %s: %w", addr, err)
	}

	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return fmt.Errorf("failed to create UDP connection: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			s.logger.Warn("Failed to close UDP connection", map[string]interface{}{
				"address": addr,
				"error":   closeErr.Error(),
			})
		}
	}()

	n, err := conn.Write(packet)
	if err != nil {
		return fmt.Errorf("failed to write packet: %w", err)
	}
	if n != len(packet) {
		return fmt.Errorf("incomplete packet send: sent %d of %d bytes", n, len(packet))
	}

	return nil
}

// buildMagicPacket constructs a Wake-on-LAN magic packet: 6 bytes of 0xFF
// followed by 16 repetitions of the target MAC, 102 bytes total.
func buildMagicPacket(mac net.HardwareAddr) ([]byte, error) {
	if len(mac) != 6 {
		return nil, fmt.Errorf("invalid MAC address length: expected 6 bytes, got %d", len(mac))
	}

	var buf bytes.Buffer
	buf.Write(bytes.Repeat([]byte{0xFF}, 6))
	for i := 0; i < 16; i++ {
		buf.Write(mac)
	}

	return buf.Bytes(), nil
}
