package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"embed"
	"flag"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"math/big"
	"mime"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/hulkholden/snowglobe/static"
)

var (
	//go:embed templates/*
	templatesFS embed.FS
	indexTmpl   = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

	port     = flag.Int("port", 80, "http port to listen on")
	useTLS   = flag.Bool("tls", false, "serve HTTPS with a self-signed certificate; WebGPU needs a secure context off localhost")
	basePath = flag.String("base_path", "", "base path to serve on, e.g. '/globe/'")
)

type indexPage struct {
	basePath string
}

func (p indexPage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// The pattern for the base path matches everything below it.
	if r.URL.Path != p.basePath {
		http.NotFound(w, r)
		return
	}
	if err := indexTmpl.Execute(w, map[string]any{"BasePath": p.basePath}); err != nil {
		log.Printf("rendering index: %v", err)
	}
}

// precompressed serves files from fsys, preferring a ".gz" sibling when the
// client accepts gzip. The Makefile ships client.wasm.gz next to client.wasm.
func precompressed(fsys fs.FS) http.Handler {
	files := http.FileServer(http.FS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean(strings.TrimPrefix(r.URL.Path, "/"))
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			files.ServeHTTP(w, r)
			return
		}
		if _, err := fs.Stat(fsys, name+".gz"); err != nil {
			files.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Vary", "Accept-Encoding")
		if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		gz := *r
		u := *r.URL
		u.Path = "/" + name + ".gz"
		u.RawPath = ""
		gz.URL = &u
		files.ServeHTTP(w, &gz)
	})
}

func logRequest(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr := &statusRecorder{ResponseWriter: w, Status: http.StatusOK}
		handler.ServeHTTP(sr, r)
		log.Printf("%s %s %d %s", r.RemoteAddr, r.Method, sr.Status, r.URL)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.Status = status
	r.ResponseWriter.WriteHeader(status)
}

func canonicalizeBasePath(s string) string {
	bp := s
	if !strings.HasSuffix(bp, "/") {
		bp = bp + "/"
	}
	if !strings.HasPrefix(bp, "/") {
		bp = "/" + bp
	}
	return bp
}

func newMux(basePath string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(basePath, indexPage{basePath: basePath})
	mux.Handle(basePath+"static/", http.StripPrefix(basePath+"static/", precompressed(static.FS)))
	return mux
}

func serve(addr string, handler http.Handler, withTLS bool) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if !withTLS {
		log.Printf("snowglobe on http://0.0.0.0%s", addr)
		return srv.ListenAndServe()
	}

	cert, err := generateSelfSignedCert()
	if err != nil {
		return fmt.Errorf("generating self-signed certificate: %v", err)
	}
	srv.TLSConfig = &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	log.Printf("snowglobe on https://0.0.0.0%s", addr)
	return srv.ListenAndServeTLS("", "")
}

func main() {
	flag.Parse()

	handler := logRequest(newMux(canonicalizeBasePath(*basePath)))
	if err := serve(fmt.Sprintf(":%d", *port), handler, *useTLS); err != nil {
		log.Fatalf("serving: %v", err)
	}
}

// generateSelfSignedCert creates a short-lived certificate for local devices
// on the same network, so phones can load the page over HTTPS.
func generateSelfSignedCert() (tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generating key: %v", err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generating serial number: %v", err)
	}

	now := time.Now()
	tmpl := x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{Organization: []string{"snowglobe dev"}},
		NotBefore:    now,
		NotAfter:     now.Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     []string{"localhost"},
		IPAddresses:  []net.IP{net.IPv4(0, 0, 0, 0), net.IPv4(127, 0, 0, 1), net.IPv6loopback},
	}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("creating certificate: %v", err)
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}, nil
}
