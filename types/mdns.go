package types

import (
	"fmt"
	"strings"
	"sync"

	"github.com/grandcat/zeroconf"

	"blocks-api/types/config"
)

// MDNS advertises the API over DNS-SD.
type MDNS struct {
	sync.Mutex

	server      *zeroconf.Server
	DNSSDStatus config.DNSSD
	resources   []string
}

func NewMDNS(_config config.Config) *MDNS {
	return &MDNS{
		DNSSDStatus: _config.DNSSD,
		resources:   make([]string, 0),
	}
}

func (m *MDNS) SetResources(resources []string) {
	m.Lock()
	defer m.Unlock()

	m.resources = resources
	if m.server != nil {
		m.server.SetText(m.getTXT())
	}
}

func (m *MDNS) GetResources() []string {
	m.Lock()
	defer m.Unlock()

	return m.resources
}

func (m *MDNS) getTXT() []string {
	return []string{
		fmt.Sprintf("version=%s", m.DNSSDStatus.Version),
		fmt.Sprintf("resources=%s", strings.Join(m.resources, ",")),
	}
}

func (m *MDNS) GetTXT() []string {
	m.Lock()
	defer m.Unlock()

	return m.getTXT()
}

// Announce registers the service. It is a no-op when DNS-SD is disabled.
func (m *MDNS) Announce() error {
	m.Lock()
	defer m.Unlock()

	if !m.DNSSDStatus.Enabled || m.server != nil {
		return nil
	}

	txt := m.getTXT()
	server, err := zeroconf.Register(
		m.DNSSDStatus.ServiceName,
		m.DNSSDStatus.ServiceType,
		m.DNSSDStatus.ServiceDomain,
		m.DNSSDStatus.ServicePort,
		txt,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register mDNS service: %w", err)
	}

	config.GetLogger().Debugf(
		"Started mDNS service %s on port %d with TXT %s",
		m.DNSSDStatus.ServiceName,
		m.DNSSDStatus.ServicePort,
		txt,
	)
	m.server = server

	return nil
}

func (m *MDNS) IsAnnounced() bool {
	m.Lock()
	defer m.Unlock()

	return m.server != nil
}

func (m *MDNS) Shutdown() {
	m.Lock()
	defer m.Unlock()

	if m.server != nil {
		config.GetLogger().Debugf("Shutting down mDNS service %s", m.DNSSDStatus.ServiceName)
		m.server.Shutdown()
		m.server = nil
	}
}
