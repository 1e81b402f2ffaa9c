package httpapi

import (
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/identity/internal/server/auth"
)

const (
	tokenHeader = "token"

	ctxClaims    = "claims"
	ctxIsLocal   = "isLocal"
	ctxRequestID = "requestId"

	msgMissingToken = `Please include authentication token in header "token"`
)

// requestID tags every request with a uuid for log correlation.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(ctxRequestID, id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// requestLogger emits one structured line per request after it completes.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info(c.Request.Context(), "request handled",
			"requestId", c.GetString(ctxRequestID),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

// validateToken guards privileged routes. A missing token yields a 403 with
// an instructional plain-text body; any verification failure yields a bare
// 403. These short-circuit without the uniform delay since neither reveals
// anything enumerable.
func (s *Server) validateToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(tokenHeader)
		if token == "" {
			c.String(403, msgMissingToken)
			c.Abort()
			return
		}

		claims, err := s.tokens.Verify(token)
		if err != nil {
			s.log.Debug(c.Request.Context(), "token rejected", "error", err)
			c.AbortWithStatus(403)
			return
		}

		c.Set(ctxClaims, claims)
		c.Next()
	}
}

// claims returns the verified claims stored by validateToken.
func claims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil
	}
	return v.(*auth.Claims)
}

// originClassifier decides whether the caller sits on the trusted network
// segment. Loopback callers and callers inside the configured interface's
// prefix are local; everything else, including classification errors, is
// external.
func (s *Server) originClassifier() gin.HandlerFunc {
	return func(c *gin.Context) {
		addr := c.GetHeader("X-Forwarded-For")
		if addr != "" {
			addr = strings.TrimSpace(strings.Split(addr, ",")[0])
		} else {
			addr = c.ClientIP()
		}
		c.Set(ctxIsLocal, s.isLocalAddress(addr))
		c.Next()
	}
}

func (s *Server) isLocalAddress(addr string) bool {
	ip, err := netip.ParseAddr(normalizeAddress(addr))
	if err != nil {
		return false
	}
	if ip.IsLoopback() {
		return true
	}

	iface, err := net.InterfaceByName(s.cfg.ServiceNicID)
	if err != nil {
		return false
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return false
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		prefix, err := prefixFromIPNet(ipNet)
		if err != nil {
			continue
		}
		if prefix.Contains(ip) {
			return true
		}
	}
	return false
}

// normalizeAddress strips the IPv4-mapped IPv6 prefix so dotted-quad
// callers compare against IPv4 interface prefixes.
func normalizeAddress(addr string) string {
	if strings.HasPrefix(addr, "::ffff:") && strings.Contains(addr, ".") {
		return strings.TrimPrefix(addr, "::ffff:")
	}
	return addr
}

func prefixFromIPNet(ipNet *net.IPNet) (netip.Prefix, error) {
	ip, ok := netip.AddrFromSlice(ipNet.IP)
	if !ok {
		return netip.Prefix{}, &net.AddrError{Err: "invalid ip", Addr: ipNet.IP.String()}
	}
	ip = ip.Unmap()
	ones, _ := ipNet.Mask.Size()
	return ip.Prefix(ones)
}
