package http

import (
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"fraction-tug-service/internal/app"
	"fraction-tug-service/internal/domain"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

//go:embed static/*
var static embed.FS

// Options tune the HTTP surface.
type Options struct {
	Version string
	Verbose bool
	// Secure enables HSTS when the service sits behind TLS.
	Secure bool
}

// NewRouter sets up routes so that:
//   - /                   → redirects to a new match (8-char ID)
//   - /match/:matchid     → HTML client
//   - /match/:matchid/ws  → WebSocket for that match
//   - /match/:matchid/qr  → PNG QR code for that match URL
//   - /match/:matchid/state → JSON snapshot
func NewRouter(service *app.MatchService, opts Options) *httprouter.Router {
	mux := httprouter.New()
	ws := NewWSHandler(service, opts.Verbose)

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		log.Printf("panic serving %s: %v", r.URL.Path, i)
		http.Error(w, "An error has occurred. Please try again.", http.StatusInternalServerError)
	}

	mux.GET("/", redirectNewMatch(service, opts))
	mux.GET("/healthz", serveHealthCheck(opts))
	mux.GET("/version", serveVersion(opts))
	mux.GET("/assets/*filepath", serveAssets(opts))
	mux.GET("/match/:matchid", serveMatchPage(service, opts))
	mux.GET("/match/:matchid/ws", ws.ServeWS)
	mux.GET("/match/:matchid/qr", serveQR(opts))
	mux.GET("/match/:matchid/state", serveState(service, opts))

	return mux
}

func securityHeaders(opts Options, w http.ResponseWriter) {
	w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
	w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; connect-src 'self' ws: wss:")

	if opts.Secure {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	}
}

func logf(opts Options, format string, args ...any) {
	if !opts.Verbose {
		return
	}
	log.Printf(format, args...)
}

func redirectNewMatch(service *app.MatchService, opts Options) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		matchID := service.NewMatchID()
		logf(opts, "created match %s for %s", matchID, r.RemoteAddr)
		http.Redirect(w, r, "/match/"+matchID, http.StatusTemporaryRedirect)
	}
}

func serveMatchPage(service *app.MatchService, opts Options) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if _, err := service.Open(r.Context(), ps.ByName("matchid")); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		page, err := static.ReadFile("static/index.html")
		if err != nil {
			http.Error(w, "page unavailable", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(opts, w)
		_, _ = w.Write(page)
	}
}

func serveAssets(opts Options) httprouter.Handle {
	assets, _ := fs.Sub(static, "static")
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		name := strings.TrimPrefix(ps.ByName("filepath"), "/")

		data, err := fs.ReadFile(assets, name)
		if err != nil {
			http.NotFound(w, r)
			return
		}

		switch {
		case strings.HasSuffix(name, ".css"):
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
		case strings.HasSuffix(name, ".js"):
			w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		case strings.HasSuffix(name, ".html"):
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(opts, w)

		_, _ = w.Write(data)
	}
}

func serveState(service *app.MatchService, opts Options) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		state, err := service.Snapshot(r.Context(), ps.ByName("matchid"))
		if errors.Is(err, domain.ErrMatchNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(opts, w)
		_ = json.NewEncoder(w).Encode(projectView(state))
	}
}

// serveQR renders a PNG QR code pointing at the match page, so a classroom
// board can hand the match to a tablet.
func serveQR(opts Options) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		matchID := ps.ByName("matchid")
		if matchID == "" {
			http.Error(w, "missing match id", http.StatusBadRequest)
			return
		}

		scheme := "http"
		if r.TLS != nil || opts.Secure {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		const qrSize = 320
		png, err := qrcode.Encode(scheme+"://"+r.Host+"/match/"+matchID, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(opts, w)
		_, _ = w.Write(png)
	}
}

func serveHealthCheck(opts Options) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(opts, w)
		_, _ = w.Write([]byte("ok"))
	}
}

func serveVersion(opts Options) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(opts, w)
		_, _ = w.Write([]byte("fraction-tug v" + opts.Version + "\n"))
	}
}
