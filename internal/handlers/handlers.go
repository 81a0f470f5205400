package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/xdrive/xdrive-logistics/internal/domain"
	"github.com/xdrive/xdrive-logistics/internal/repository"
	"github.com/xdrive/xdrive-logistics/internal/service"
	"github.com/xdrive/xdrive-logistics/pkg/auth"
	"github.com/xdrive/xdrive-logistics/pkg/config"
	"github.com/xdrive/xdrive-logistics/pkg/logger"
)

type contextKey string

const claimsKey contextKey = "claims"

type Handlers struct {
	authService     service.AuthService
	shipmentService service.ShipmentService
	offerService    service.OfferService
	bookingService  service.BookingService
	invoiceService  service.InvoiceService
	feedbackService service.FeedbackService
	reportService   service.ReportService
	rateLimitRepo   repository.RateLimitRepository
	config          *config.Config
}

func New(
	authService service.AuthService,
	shipmentService service.ShipmentService,
	offerService service.OfferService,
	bookingService service.BookingService,
	invoiceService service.InvoiceService,
	feedbackService service.FeedbackService,
	reportService service.ReportService,
	rateLimitRepo repository.RateLimitRepository,
	config *config.Config,
) *Handlers {
	return &Handlers{
		authService:     authService,
		shipmentService: shipmentService,
		offerService:    offerService,
		bookingService:  bookingService,
		invoiceService:  invoiceService,
		feedbackService: feedbackService,
		reportService:   reportService,
		rateLimitRepo:   rateLimitRepo,
		config:          config,
	}
}

// RequireJWT authenticates the bearer token and, when roles are given,
// authorizes against them. Admin passes every role gate.
func (h *Handlers) RequireJWT(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header", "UNAUTHORIZED")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := auth.Parse(token, h.config.Auth.JWTSecret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token", "INVALID_TOKEN")
				return
			}
			if !domain.IsValidAccountType(claims.AccountType) {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token", "INVALID_TOKEN")
				return
			}

			if len(roles) > 0 && claims.AccountType != domain.AccountAdmin {
				allowed := false
				for _, role := range roles {
					if claims.AccountType == role {
						allowed = true
						break
					}
				}
				if !allowed {
					writeError(w, http.StatusForbidden, "Insufficient permissions", "FORBIDDEN")
					return
				}
			}

			ctx := context.WithValue(r.Context(), logger.UserIDKey, claims.Sub)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthRateLimit applies the per-IP limiter to authentication endpoints.
// The limiter fails open: a broken redis never locks everyone out.
func (h *Handlers) AuthRateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "auth:" + getClientIP(r)

			allowed, err := h.rateLimitRepo.Allow(r.Context(), key, h.config.Auth.LoginRateLimit, h.config.Auth.LoginRateWindow)
			if err != nil {
				logger.ErrorContext(r.Context(), "Rate limit check failed", "error", err)
			} else if !allowed {
				writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.", "RATE_LIMIT_EXCEEDED")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message, code string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
		"code":  code,
	})
}

// respondError maps domain failures onto the HTTP taxonomy. Unexpected
// errors are logged with detail but answered with a generic body so store
// internals never leak to clients.
func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error(), "INVALID_INPUT")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error(), "CONFLICT")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid email or password", "INVALID_CREDENTIALS")
	case errors.Is(err, domain.ErrNotVerified):
		writeError(w, http.StatusForbidden, "Account not verified. Please check your email.", "ACCOUNT_NOT_VERIFIED")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "Insufficient permissions", "FORBIDDEN")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", "NOT_FOUND")
	case errors.Is(err, domain.ErrExpiredToken):
		writeError(w, http.StatusBadRequest, "Verification token has expired", "EXPIRED_TOKEN")
	case errors.Is(err, domain.ErrInvalidToken):
		writeError(w, http.StatusBadRequest, "Invalid verification token", "INVALID_TOKEN")
	default:
		logger.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR")
	}
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}
