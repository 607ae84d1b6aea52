package middlewarectx

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/subscription-tracker/internal/config"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/metrics"
)

// Режимы фильтра.
const (
	ModeLive   = "LIVE"
	ModeDryRun = "DRY_RUN"
)

// Причины отказа.
const (
	ReasonRateLimit = "rate_limit"
	ReasonBot       = "bot"
)

// visitorTTL сколько хранится корзина клиента без запросов.
const visitorTTL = 3 * time.Minute

var (
	// searchEngines краулеры, которые пропускаются как разрешённые боты.
	searchEngines = []string{
		"googlebot", "bingbot", "duckduckbot", "yandexbot", "baiduspider",
		"slurp", "applebot", "sogou", "exabot",
	}
	// botMarkers признаки автоматических клиентов в User-Agent.
	botMarkers = []string{
		"bot", "crawler", "spider", "scraper", "curl", "wget", "httpie",
		"python-requests", "python-urllib", "aiohttp", "go-http-client",
		"okhttp", "java/", "libwww", "scrapy", "headlesschrome", "phantomjs",
		"selenium", "puppeteer", "playwright",
	}
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Gate фильтр запросов: корзина токенов на IP клиента и определение ботов.
//
// В режиме LIVE отказ отвечает 429 или 403, в режиме DRY_RUN решение
// только логируется и запрос проходит дальше.
type Gate struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time

	limit     rate.Limit
	burst     int
	requested int
	mode      string
	log       *slog.Logger
	now       func() time.Time
}

// NewGate создаёт фильтр по настройкам. Режим LIVE включается ключом фильтра.
func NewGate(cfg config.Gate, log *slog.Logger) *Gate {
	mode := ModeDryRun
	if cfg.Live() {
		mode = ModeLive
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	return &Gate{
		visitors:  make(map[string]*visitor),
		limit:     rate.Limit(float64(cfg.RefillRate) / interval.Seconds()),
		burst:     cfg.Capacity,
		requested: cfg.Requested,
		mode:      mode,
		log:       log,
		now:       time.Now,
	}
}

// Mode возвращает LIVE или DRY_RUN.
func (g *Gate) Mode() string {
	return g.mode
}

// Middleware применяет фильтр к запросам.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const op = "middlewarectx.Gate"

		reason := g.decide(r)
		if reason == "" {
			next.ServeHTTP(w, r)
			return
		}

		metrics.GateDecisions.WithLabelValues(reason, g.mode).Inc()
		log := g.log.With(
			sl.Op(op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("reason", reason),
			slog.String("mode", g.mode),
			slog.String("ip", clientIP(r)),
		)

		if g.mode != ModeLive {
			log.Info("gate would deny request")
			next.ServeHTTP(w, r)
			return
		}

		log.Warn("gate denied request")
		switch reason {
		case ReasonRateLimit:
			render.Status(r, http.StatusTooManyRequests)
			render.JSON(w, r, map[string]string{"error": "Too many requests"})
		case ReasonBot:
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, map[string]string{"error": "No bots allowed"})
		default:
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, map[string]string{"error": "Forbidden"})
		}
	})
}

// decide возвращает причину отказа или пустую строку.
// Боты проверяются до списания токенов.
func (g *Gate) decide(r *http.Request) string {
	if IsBot(r.UserAgent()) {
		return ReasonBot
	}
	if !g.allow(clientIP(r)) {
		return ReasonRateLimit
	}
	return ""
}

func (g *Gate) allow(ip string) bool {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	if now.Sub(g.lastSweep) > visitorTTL {
		for key, v := range g.visitors {
			if now.Sub(v.lastSeen) > visitorTTL {
				delete(g.visitors, key)
			}
		}
		g.lastSweep = now
	}

	v, ok := g.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(g.limit, g.burst)}
		g.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, g.requested)
}

// IsBot определяет автоматического клиента по User-Agent.
// Пустой агент считается ботом, поисковые краулеры нет.
func IsBot(userAgent string) bool {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	if ua == "" {
		return true
	}
	for _, se := range searchEngines {
		if strings.Contains(ua, se) {
			return false
		}
	}
	for _, marker := range botMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
