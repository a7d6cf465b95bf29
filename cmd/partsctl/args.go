package main

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/your-org/partsboard/internal/models"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// parseAssignments reads "id=0" or "id=1" arguments. "on" and "off" are accepted too.
func parseAssignments(args []string) (map[int64]int, error) {
	out := make(map[int64]int, len(args))
	for _, arg := range args {
		rawID, rawValue, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected <subpart-id>=<0|1>, got %q", arg)
		}
		id, err := parseID(rawID)
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(rawValue) {
		case "1", "on":
			out[id] = models.InUseOn
		case "0", "off":
			out[id] = models.InUseOff
		default:
			return nil, fmt.Errorf("subpart %d: status must be 0 or 1, got %q", id, rawValue)
		}
	}
	return out, nil
}

// localIP is the outbound address reported with an update.
func localIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return ""
	}
	defer conn.Close()
	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return ""
}
