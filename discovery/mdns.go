// Package discovery advertises the board hub on the local network and
// lets headless clients find it without configuration.
package discovery

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/mdns"
)

const ServiceType = "_journalboard._tcp"

// Advertise announces the hub on port until the returned server is shut
// down.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, []string{"journal-board"})
	if err != nil {
		return nil, fmt.Errorf("mdns service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("mdns server: %w", err)
	}
	return server, nil
}

// Browse returns the first IPv4 host:port answering within timeout.
func Browse(timeout time.Duration) (string, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})

	var addr string
	go func() {
		defer close(done)
		for e := range entries {
			if addr != "" || e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			addr = net.JoinHostPort(e.AddrV4.String(), strconv.Itoa(e.Port))
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	<-done

	if err != nil {
		return "", fmt.Errorf("mdns query: %w", err)
	}
	if addr == "" {
		return "", fmt.Errorf("no %s service answered", ServiceType)
	}
	return addr, nil
}
