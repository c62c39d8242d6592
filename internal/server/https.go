package server

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/markb/sareeone/internal/log"
	"golang.org/x/crypto/acme/autocert"
)

// HTTPSConfig enables Let's Encrypt certificates for one public domain.
type HTTPSConfig struct {
	Domain    string
	CertDir   string
	HTTPSAddr string // usually :443
	HTTPAddr  string // ACME challenges and redirect, usually :80
}

// ValidateDomain rejects names Let's Encrypt will not issue for.
func ValidateDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("domain required for HTTPS")
	}
	if strings.EqualFold(domain, "localhost") {
		return fmt.Errorf("Let's Encrypt requires a public domain, not localhost")
	}
	if net.ParseIP(strings.Trim(domain, "[]")) != nil {
		return fmt.Errorf("Let's Encrypt requires a domain name, not an IP address")
	}
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") ||
		strings.HasPrefix(domain, "-") || strings.HasSuffix(domain, "-") ||
		strings.Contains(domain, "..") || !strings.Contains(domain, ".") {
		return fmt.Errorf("invalid domain format: %s", domain)
	}
	return nil
}

func NewAutocertManager(domain, certDir string) *autocert.Manager {
	return &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domain),
		Cache:      autocert.DirCache(certDir),
	}
}

func NewTLSConfig(manager *autocert.Manager) *tls.Config {
	return &tls.Config{
		GetCertificate: manager.GetCertificate,
		NextProtos:     []string{"h2", "http/1.1", "acme-tls/1"},
		MinVersion:     tls.VersionTLS12,
	}
}

// HTTPRedirectHandler sends plain HTTP requests to the HTTPS origin.
func HTTPRedirectHandler(domain string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "https://"+domain+r.URL.RequestURI(), http.StatusMovedPermanently)
	})
}

// ListenAndServeTLS serves the router over HTTPS and runs a plain HTTP
// listener for ACME challenges and redirects. It returns when either
// listener fails or both are shut down.
func (s *Server) ListenAndServeTLS(cfg HTTPSConfig) error {
	if err := ValidateDomain(cfg.Domain); err != nil {
		return err
	}

	s.autocertMgr = NewAutocertManager(cfg.Domain, cfg.CertDir)
	s.httpsServer = &http.Server{
		Addr:              cfg.HTTPSAddr,
		Handler:           s.router,
		TLSConfig:         NewTLSConfig(s.autocertMgr),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpRedirect = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.autocertMgr.HTTPHandler(HTTPRedirectHandler(cfg.Domain)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 2)
	go func() {
		log.Info("server: https listening", "addr", cfg.HTTPSAddr, "domain", cfg.Domain)
		errc <- s.httpsServer.ListenAndServeTLS("", "")
	}()
	go func() {
		log.Info("server: http redirect listening", "addr", cfg.HTTPAddr)
		errc <- s.httpRedirect.ListenAndServe()
	}()

	for range 2 {
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}
	return nil
}
