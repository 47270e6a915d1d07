package hateoas

import (
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
)

// LinkService builds links for one request. It holds no state besides the
// request origin and the current controller.
type LinkService struct {
	router     Router
	origin     string
	controller string
}

func NewLinkService(router Router, origin, controller string) *LinkService {
	return &LinkService{router: router, origin: strings.TrimSuffix(origin, "/"), controller: controller}
}

// ForRequest derives the origin (scheme and host) from c. Forwarded
// headers count only when c comes from one of proxies.
func ForRequest(router Router, proxies TrustedProxies, c *gin.Context, controller string) *LinkService {
	return NewLinkService(router, RequestOrigin(c, proxies), controller)
}

// TrustedProxies are the peers allowed to set X-Forwarded-Proto and
// X-Forwarded-Host.
type TrustedProxies []netip.Prefix

// ParseTrustedProxies accepts single addresses and CIDR ranges.
func ParseTrustedProxies(list []string) (TrustedProxies, error) {
	out := make(TrustedProxies, 0, len(list))
	for _, raw := range list {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// Trusts reports whether remoteAddr (host:port or a bare IP) is a trusted
// proxy.
func (t TrustedProxies) Trusts(remoteAddr string) bool {
	if len(t) == 0 {
		return false
	}
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range t {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// RequestOrigin returns scheme://host for the request. X-Forwarded-Proto
// and X-Forwarded-Host are honored only from a trusted proxy, and only
// http or https with a plain host survive.
func RequestOrigin(c *gin.Context, proxies TrustedProxies) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	host := c.Request.Host
	if proxies.Trusts(c.Request.RemoteAddr) {
		if proto := strings.ToLower(firstHeaderValue(c.GetHeader("X-Forwarded-Proto"))); proto == "http" || proto == "https" {
			scheme = proto
		}
		if fwd := firstHeaderValue(c.GetHeader("X-Forwarded-Host")); validHost(fwd) {
			host = fwd
		}
	}
	if !validHost(host) {
		return ""
	}
	return scheme + "://" + host
}

func firstHeaderValue(v string) string {
	first, _, _ := strings.Cut(v, ",")
	return strings.TrimSpace(first)
}

// validHost accepts host or host:port without userinfo or a path.
func validHost(host string) bool {
	if host == "" || strings.ContainsAny(host, "/\\@?#") {
		return false
	}
	for _, r := range host {
		if r <= ' ' || r == 0x7f {
			return false
		}
	}
	return true
}

// CreateLink resolves action on controller (the current controller when
// omitted). Empty values are left out of the URL.
func (s *LinkService) CreateLink(action, rel, method string, values Values, controller ...string) (Link, error) {
	ctrl := s.controller
	if len(controller) > 0 && controller[0] != "" {
		ctrl = controller[0]
	}
	href, err := s.router.URL(action, ctrl, values.Strings())
	if err != nil {
		return Link{}, err
	}
	return Link{Href: s.origin + href, Rel: rel, Method: method}, nil
}

// Builder collects links and keeps the first error.
type Builder struct {
	s     *LinkService
	links []Link
	err   error
}

func (s *LinkService) Build() *Builder {
	return &Builder{s: s}
}

func (b *Builder) Add(action, rel, method string, values Values, controller ...string) *Builder {
	if b.err != nil {
		return b
	}
	link, err := b.s.CreateLink(action, rel, method, values, controller...)
	if err != nil {
		b.err = err
		return b
	}
	b.links = append(b.links, link)
	return b
}

// AddIf adds the link only when cond holds.
func (b *Builder) AddIf(cond bool, action, rel, method string, values Values, controller ...string) *Builder {
	if !cond {
		return b
	}
	return b.Add(action, rel, method, values, controller...)
}

func (b *Builder) Links() ([]Link, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.links == nil {
		return []Link{}, nil
	}
	return b.links, nil
}
