package hue

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/amimof/huego"
	"github.com/hashicorp/mdns"
	"github.com/rs/zerolog/log"
)

const mdnsService = "_hue._tcp"

// Discover looks for bridges on the local network using mDNS and the
// meethue N-UPnP endpoint. Results are deduplicated by host; a failing
// lookup is logged and the other one still contributes.
func Discover(ctx context.Context, timeout time.Duration) ([]Bridge, error) {
	found := discoverMDNS(ctx, timeout)

	nupnp, err := huego.DiscoverAllContext(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("N-UPnP discovery failed")
	}
	for _, b := range nupnp {
		found = append(found, Bridge{ID: strings.ToLower(b.ID), Host: b.Host, Source: "nupnp"})
	}

	if len(found) == 0 && err != nil {
		return nil, fmt.Errorf("no bridges discovered: %w", err)
	}
	return dedupeBridges(found), nil
}

func discoverMDNS(ctx context.Context, timeout time.Duration) []Bridge {
	entries := make(chan *mdns.ServiceEntry, 10)

	go func() {
		params := &mdns.QueryParam{
			Service:             mdnsService,
			Domain:              "local",
			Timeout:             timeout,
			Entries:             entries,
			DisableIPv6:         true,
			WantUnicastResponse: true,
		}
		if err := mdns.Query(params); err != nil {
			log.Warn().Err(err).Msg("mDNS query failed")
		}
		close(entries)
	}()

	var bridges []Bridge
	for entry := range entries {
		if ctx.Err() != nil {
			continue
		}
		log.Debug().Str("name", entry.Name).Str("addr", entry.AddrV4.String()).Int("port", entry.Port).Msg("mDNS entry")
		if b, ok := bridgeFromEntry(entry); ok {
			bridges = append(bridges, b)
		}
	}
	return bridges
}

func bridgeFromEntry(entry *mdns.ServiceEntry) (Bridge, bool) {
	if entry == nil || entry.AddrV4 == nil || entry.AddrV4.IsUnspecified() {
		return Bridge{}, false
	}

	host := entry.AddrV4.String()
	if entry.Port != 0 && entry.Port != 80 && entry.Port != 443 {
		host = net.JoinHostPort(host, fmt.Sprint(entry.Port))
	}

	b := Bridge{Host: host, Source: "mdns"}
	for _, field := range entry.InfoFields {
		if id, ok := strings.CutPrefix(field, "bridgeid="); ok {
			b.ID = strings.ToLower(id)
		}
	}
	return b, true
}

func dedupeBridges(bridges []Bridge) []Bridge {
	seen := make(map[string]bool, len(bridges))
	result := make([]Bridge, 0, len(bridges))
	for _, b := range bridges {
		if seen[b.Host] {
			continue
		}
		seen[b.Host] = true
		result = append(result, b)
	}
	return result
}
