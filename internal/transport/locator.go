// internal/transport/locator.go
package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"
)

const gatewayServiceType = "_pos-gateway._tcp"

// GatewayCandidate is a gateway endpoint found on the local network.
type GatewayCandidate struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	Name string `json:"name"`
}

// GatewayLocator discovers print gateways via mDNS so a fresh install can
// find the desktop gateway without any configured host.
type GatewayLocator struct {
	logger *zap.Logger
}

func NewGatewayLocator(logger *zap.Logger) *GatewayLocator {
	return &GatewayLocator{logger: logger}
}

// Locate browses the local network for the given duration and returns every
// gateway that announced itself, in announcement order.
func (gl *GatewayLocator) Locate(ctx context.Context, timeout time.Duration) ([]GatewayCandidate, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	browseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := resolver.Browse(browseCtx, gatewayServiceType, "local.", entries); err != nil {
		return nil, fmt.Errorf("mDNS browse failed: %w", err)
	}

	var found []GatewayCandidate
	for entry := range entries {
		candidate := GatewayCandidate{
			Name: entry.Instance,
			Port: entry.Port,
		}
		if len(entry.AddrIPv4) > 0 {
			candidate.Host = entry.AddrIPv4[0].String()
		} else if entry.HostName != "" {
			candidate.Host = entry.HostName
		} else {
			continue
		}
		gl.logger.Info("Gateway announced",
			zap.String("name", candidate.Name),
			zap.String("host", candidate.Host),
			zap.Int("port", candidate.Port))
		found = append(found, candidate)
	}
	return found, nil
}
