package middleware

import (
	"encoding/json"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	GeneralRate     rate.Limit    // 認証済みAPI全般のレート（req/sec）
	GeneralBurst    int           // 認証済みAPI全般のバーストサイズ
	ScanRate        rate.Limit    // リポジトリスキャンのレート（req/sec）
	ScanBurst       int           // リポジトリスキャンのバーストサイズ
	TransformRate   rate.Limit    // 未認証の変換APIのレート（req/sec、IPごと）
	TransformBurst  int           // 未認証の変換APIのバーストサイズ
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
}

// DefaultRateLimiterConfig はデフォルトのレート制限設定を返す。
// API全般 120 req/min/user、スキャン 10 req/min/user、
// 未認証の変換 20 req/min/IP。
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(120.0 / 60.0),
		GeneralBurst:    120,
		ScanRate:        rate.Limit(10.0 / 60.0),
		ScanBurst:       10,
		TransformRate:   rate.Limit(20.0 / 60.0),
		TransformBurst:  20,
		CleanupInterval: 5 * time.Minute,
	}
}

// keyedLimiter はキーごとのレートリミッターとアクセス時刻を保持する。
type keyedLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// limiterBucket は1種類のレート制限のキー別リミッター集合を管理する。
type limiterBucket struct {
	mu       sync.RWMutex
	limiters map[string]*keyedLimiter
	rateVal  rate.Limit
	burst    int
}

func newLimiterBucket(rateVal rate.Limit, burst int) *limiterBucket {
	return &limiterBucket{
		limiters: make(map[string]*keyedLimiter),
		rateVal:  rateVal,
		burst:    burst,
	}
}

// getOrCreate はキーのリミッターを取得または作成する。
func (b *limiterBucket) getOrCreate(key string) *rate.Limiter {
	b.mu.RLock()
	kl, exists := b.limiters[key]
	b.mu.RUnlock()

	if exists {
		b.mu.Lock()
		kl.lastAccess = time.Now()
		b.mu.Unlock()
		return kl.limiter
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// ダブルチェック
	if kl, exists := b.limiters[key]; exists {
		kl.lastAccess = time.Now()
		return kl.limiter
	}

	limiter := rate.NewLimiter(b.rateVal, b.burst)
	b.limiters[key] = &keyedLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

// count は現在管理されているエントリ数を返す。テスト用。
func (b *limiterBucket) count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.limiters)
}

// cleanup は一定時間アクセスのないエントリを削除する。
func (b *limiterBucket) cleanup(maxIdle time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for key, kl := range b.limiters {
		if time.Since(kl.lastAccess) > maxIdle {
			delete(b.limiters, key)
		}
	}
}

// RateLimiter はキーごとのレート制限を管理する。
// 認証済みAPI全般、スキャン、未認証の変換の3種類を提供する。
type RateLimiter struct {
	config    RateLimiterConfig
	general   *limiterBucket
	scan      *limiterBucket
	transform *limiterBucket
	stopCh    chan struct{}
}

// NewRateLimiter は新しいRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:    config,
		general:   newLimiterBucket(config.GeneralRate, config.GeneralBurst),
		scan:      newLimiterBucket(config.ScanRate, config.ScanBurst),
		transform: newLimiterBucket(config.TransformRate, config.TransformBurst),
		stopCh:    make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// GeneralMiddleware は認証済みAPI全般のレート制限ミドルウェアを返す。
// リクエストコンテキストにセッションクレームが含まれている必要がある
// （SessionMiddlewareの後に配置）。
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return rl.userKeyedMiddleware(rl.general, "general")
}

// ScanMiddleware はリポジトリスキャン専用のレート制限ミドルウェアを返す。
// API全般のレート制限とは独立に動作する。
func (rl *RateLimiter) ScanMiddleware() func(next http.Handler) http.Handler {
	return rl.userKeyedMiddleware(rl.scan, "scan")
}

// userKeyedMiddleware はユーザーIDをキーとするレート制限ミドルウェアを返す。
func (rl *RateLimiter) userKeyedMiddleware(bucket *limiterBucket, limitType string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserIDFromContext(r.Context())
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if !bucket.getOrCreate(userID).Allow() {
				writeRateLimitResponse(w, bucket.rateVal)
				slog.Warn("rate limit exceeded",
					slog.String("user_id", userID),
					slog.String("limit_type", limitType),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// TransformMiddleware は未認証の変換APIのレート制限ミドルウェアを返す。
// セッションを持たないため、リモートIPをキーとする。
func (rl *RateLimiter) TransformMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			if !rl.transform.getOrCreate(key).Allow() {
				writeRateLimitResponse(w, rl.config.TransformRate)
				slog.Warn("rate limit exceeded",
					slog.String("ip", key),
					slog.String("limit_type", "transform"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GeneralLimiterCount は現在管理されているAPI全般リミッターのエントリ数を返す。
// テスト用。
func (rl *RateLimiter) GeneralLimiterCount() int {
	return rl.general.count()
}

// ScanLimiterCount は現在管理されているスキャンリミッターのエントリ数を返す。
// テスト用。
func (rl *RateLimiter) ScanLimiterCount() int {
	return rl.scan.count()
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			maxIdle := rl.config.CleanupInterval * 2
			rl.general.cleanup(maxIdle)
			rl.scan.cleanup(maxIdle)
			rl.transform.cleanup(maxIdle)
		case <-rl.stopCh:
			return
		}
	}
}

// clientIP はリクエストのリモートIPを返す。
// リバースプロキシ背後の場合はX-Forwarded-Forの先頭を優先する。
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeRateLimitResponse は429レスポンスをRetry-Afterヘッダー付きで書き込む。
func writeRateLimitResponse(w http.ResponseWriter, limit rate.Limit) {
	// 次の1リクエストが許可されるまでの秒数を見積もる
	retryAfter := 1
	if limit > 0 {
		retryAfter = int(math.Ceil(1.0 / float64(limit)))
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(map[string]string{
		"code":    "RATE_LIMITED",
		"message": "リクエストが多すぎます。しばらく待ってから再度お試しください。",
	})
}
