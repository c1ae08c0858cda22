package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"property-management-backend/internal/auth"
	"property-management-backend/internal/importer"
	"property-management-backend/internal/model"
	"property-management-backend/internal/store"
)

// Notifier receives complaints that users should hear about.
type Notifier interface {
	Dispatch(complaintID int64)
}

type noopNotifier struct{}

func (noopNotifier) Dispatch(int64) {}

// Options carries the optional dependencies of a Handler.
type Options struct {
	Webpush      *webpush.Options
	Notifier     Notifier
	AtomicImport bool
	Logger       *zap.Logger
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store        store.Store
	auth         *auth.Authenticator
	tokens       *auth.TokenIssuer
	webpush      *webpush.Options
	notifier     Notifier
	atomicImport bool
	logger       *zap.Logger
	now          func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, authn *auth.Authenticator, tokens *auth.TokenIssuer, opts Options) *Handler {
	h := &Handler{
		store:        s,
		auth:         authn,
		tokens:       tokens,
		webpush:      opts.Webpush,
		notifier:     opts.Notifier,
		atomicImport: opts.AtomicImport,
		logger:       opts.Logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
	if h.notifier == nil {
		h.notifier = noopNotifier{}
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	return h
}

// writeError maps store and auth errors to HTTP responses.
func (h *Handler) writeError(c *gin.Context, err error) {
	var rowErr *importer.RowError
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case store.IsValidation(err), errors.Is(err, model.ErrInvalidValue), errors.As(err, &rowErr),
		errors.Is(err, importer.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// pathID parses the named path parameter as a positive id.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s", name)})
		return 0, false
	}
	return id, true
}

// queryID parses an optional numeric query parameter. Zero means absent.
func queryID(c *gin.Context, name string) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// parseDate accepts RFC 3339 timestamps and plain dates.
func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: %q is not a date", field, raw)
}

func parseOptionalDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := parseDate(field, *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
