// Package acl wraps an externally loaded access control list into the
// queryable object the shared context consults. The document is
// read-only after loading, so lookups need no locking.
package acl

import (
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/yl2chen/cidranger"

	"github.com/ssocks/ssgate/ssgate"
)

// Mode defines the default decision for addresses no rule mentions.
type Mode int

const (
	// ModeProxyAll proxies everything except explicit bypass rules.
	// This is the default.
	ModeProxyAll Mode = iota

	// ModeBypassAll bypasses everything except explicit proxy rules.
	ModeBypassAll
)

func (m Mode) String() string {
	if m == ModeBypassAll {
		return "bypass_all"
	}

	return "proxy_all"
}

// ruleSet holds one list of the ACL document: CIDR rules in a prefix
// trie plus exact and suffix host rules.
type ruleSet struct {
	ranger   cidranger.Ranger
	hosts    map[string]struct{}
	suffixes map[string]struct{}
}

func newRuleSet() *ruleSet {
	return &ruleSet{
		ranger:   cidranger.NewPCTrieRanger(),
		hosts:    make(map[string]struct{}),
		suffixes: make(map[string]struct{}),
	}
}

func (r *ruleSet) add(rule string) error {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return nil
	}

	if strings.HasPrefix(rule, ".") {
		r.suffixes[strings.TrimPrefix(rule, ".")] = struct{}{}

		return nil
	}

	if _, ipnet, err := net.ParseCIDR(rule); err == nil {
		return r.insertNet(ipnet)
	}

	if ip := net.ParseIP(rule); ip != nil {
		bits := 32
		if ip.To4() == nil {
			bits = 128
		}

		return r.insertNet(&net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}

	// Anything else is a domain rule: exact match plus subdomains.
	r.hosts[rule] = struct{}{}
	r.suffixes[rule] = struct{}{}

	return nil
}

func (r *ruleSet) insertNet(ipnet *net.IPNet) error {
	if err := r.ranger.Insert(cidranger.NewBasicRangerEntry(*ipnet)); err != nil {
		return fmt.Errorf("cannot insert %s: %w", ipnet, err)
	}

	return nil
}

func (r *ruleSet) matchIP(ip netip.Addr) bool {
	contains, err := r.ranger.Contains(net.IP(ip.Unmap().AsSlice()))

	return err == nil && contains
}

func (r *ruleSet) matchHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))

	if _, ok := r.hosts[host]; ok {
		return true
	}

	for {
		if _, ok := r.suffixes[host]; ok {
			return true
		}

		idx := strings.IndexByte(host, '.')
		if idx < 0 {
			return false
		}

		host = host[idx+1:]
	}
}

// AccessList is the loaded ACL document.
type AccessList struct {
	mode          Mode
	bypass        *ruleSet
	proxy         *ruleSet
	outboundBlock *ruleSet
	clientBlock   *ruleSet
}

// New creates an empty access list with the given default mode.
func New(mode Mode) *AccessList {
	return &AccessList{
		mode:          mode,
		bypass:        newRuleSet(),
		proxy:         newRuleSet(),
		outboundBlock: newRuleSet(),
		clientBlock:   newRuleSet(),
	}
}

// Mode returns the default decision mode.
func (a *AccessList) Mode() Mode {
	return a.mode
}

// AddBypassRule adds a rule to the bypass (go direct) list.
func (a *AccessList) AddBypassRule(rule string) error {
	return a.bypass.add(rule)
}

// AddProxyRule adds a rule to the proxy (forward) list.
func (a *AccessList) AddProxyRule(rule string) error {
	return a.proxy.add(rule)
}

// AddOutboundBlockRule adds a rule rejecting outbound targets.
func (a *AccessList) AddOutboundBlockRule(rule string) error {
	return a.outboundBlock.add(rule)
}

// AddClientBlockRule adds a rule rejecting inbound clients.
func (a *AccessList) AddClientBlockRule(rule string) error {
	return a.clientBlock.add(rule)
}

func (a *AccessList) ClientBlocked(ip netip.Addr) bool {
	return a.clientBlock.matchIP(ip)
}

func (a *AccessList) OutboundIPBlocked(ip netip.Addr) bool {
	return a.outboundBlock.matchIP(ip)
}

func (a *AccessList) OutboundHostBlocked(host string) bool {
	return a.outboundBlock.matchHost(host)
}

// IPInProxyList is the fresh default decision for an address: explicit
// rules win, the mode decides the rest.
func (a *AccessList) IPInProxyList(ip netip.Addr) bool {
	if a.bypass.matchIP(ip) {
		return false
	}

	if a.proxy.matchIP(ip) {
		return true
	}

	return a.mode == ModeProxyAll
}

// HostRule matches a domain against explicit host rules. Unmatched
// hosts are decided on their resolved addresses by the caller.
func (a *AccessList) HostRule(host string) (bypass, matched bool) {
	if a.bypass.matchHost(host) {
		return true, true
	}

	if a.proxy.matchHost(host) {
		return false, true
	}

	return false, false
}

// Ensure interface compliance.
var _ ssgate.AccessList = (*AccessList)(nil)
