package scpi

import (
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// ResourceKind says which transport a discovered resource uses.
type ResourceKind int

const (
	SerialResource ResourceKind = iota
	TCPResource
)

// Resource is one discovered, responding instrument endpoint.
type Resource struct {
	Kind     ResourceKind
	Addr     string // serial port name or host:port
	BaudRate int    // serial only
	Identity Identity
}

// VisaID returns a display identifier in the VISA resource style.
func (r Resource) VisaID() string {
	switch r.Kind {
	case SerialResource:
		return fmt.Sprintf("ASRL::%s", r.Addr)
	case TCPResource:
		return fmt.Sprintf("TCPIP::%s::SOCKET", r.Addr)
	}
	return r.Addr
}

// Identity is a parsed *IDN? reply: manufacturer, model, serial number and
// firmware revision, comma-separated.
type Identity struct {
	Manufacturer string
	Model        string
	SerialNumber string
	Firmware     string
	Raw          string
}

// ParseIdentity splits an *IDN? reply into its four fields. Replies with
// fewer fields fill what they can; Raw always keeps the full string.
func ParseIdentity(reply string) Identity {
	id := Identity{Raw: strings.TrimSpace(reply)}
	parts := strings.Split(id.Raw, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		switch i {
		case 0:
			id.Manufacturer = p
		case 1:
			id.Model = p
		case 2:
			id.SerialNumber = p
		case 3:
			id.Firmware = p
		}
	}
	return id
}

// Connect opens a transport for a resource.
func Connect(r Resource, opts Options) (Transport, error) {
	switch r.Kind {
	case SerialResource:
		return OpenSerial(r.Addr, r.BaudRate, opts)
	case TCPResource:
		return DialTCP(r.Addr, opts)
	}
	return nil, fmt.Errorf("unknown resource kind %d", r.Kind)
}

// Discover probes all serial ports plus the configured TCP endpoints with
// *IDN? and returns the resources that answered, deduplicated by identity.
// Probe failures are skipped silently; an instrument that does not answer
// an identification query is not usable here anyway.
func Discover(tcpEndpoints []string, baudRate int, opts Options) []Resource {
	var candidates []Resource

	if ports, err := enumerator.GetDetailedPortsList(); err == nil {
		for _, p := range ports {
			candidates = append(candidates, Resource{
				Kind:     SerialResource,
				Addr:     p.Name,
				BaudRate: baudRate,
			})
		}
	}
	for _, addr := range tcpEndpoints {
		candidates = append(candidates, Resource{Kind: TCPResource, Addr: addr})
	}

	return probeAll(candidates, func(r Resource) (Transport, error) {
		return Connect(r, opts)
	})
}

// probeAll asks each candidate for its identity through the supplied opener.
func probeAll(candidates []Resource, open func(Resource) (Transport, error)) []Resource {
	var found []Resource
	seen := make(map[string]bool)

	for _, cand := range candidates {
		t, err := open(cand)
		if err != nil {
			continue
		}
		reply, err := t.Query("*IDN?")
		t.Close()
		if err != nil || strings.TrimSpace(reply) == "" {
			continue
		}
		id := ParseIdentity(strings.ToUpper(reply))
		if seen[id.Raw] {
			continue
		}
		seen[id.Raw] = true
		cand.Identity = id
		found = append(found, cand)
	}
	return found
}
