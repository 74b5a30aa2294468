package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/dispatch/internal/adapter/geocode"
	domainErrors "github.com/polkiloo/dispatch/internal/domain/errors"
	"github.com/polkiloo/dispatch/internal/domain/model"
	pkgAuth "github.com/polkiloo/dispatch/internal/pkg/auth"
	"github.com/polkiloo/dispatch/internal/server/http/dto"
	"github.com/polkiloo/dispatch/internal/server/http/middleware"
)

// CurrentActor extracts the authenticated caller from context.
func CurrentActor(c *gin.Context) model.Actor {
	val, ok := c.Get(middleware.ActorContextKey)
	if !ok {
		return model.Actor{}
	}
	actor, _ := val.(model.Actor)
	return actor
}

// writeError maps domain errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	if verr, ok := domainErrors.IsValidation(err); ok {
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: "validation failed", Fields: verr.Fields})
		return
	}
	var tooMany geocode.TooManyRequestsError
	if errors.As(err, &tooMany) {
		c.Header("Retry-After", strconv.Itoa(int(tooMany.RetryAfter.Seconds())))
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "geocoder busy"})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domainErrors.ErrNotFound), errors.Is(err, domainErrors.ErrGeocodeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domainErrors.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domainErrors.ErrInvalidCredentials), errors.Is(err, pkgAuth.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, domainErrors.ErrAlreadyExists),
		errors.Is(err, domainErrors.ErrConflict),
		errors.Is(err, domainErrors.ErrIllegalTransition),
		errors.Is(err, domainErrors.ErrPaymentPending):
		status = http.StatusConflict
	case errors.Is(err, domainErrors.ErrDriverRequired),
		errors.Is(err, domainErrors.ErrInvalidDriver),
		errors.Is(err, domainErrors.ErrDeliverySettingsIncomplete),
		errors.Is(err, domainErrors.ErrLocationRequired),
		errors.Is(err, domainErrors.ErrOutOfDeliveryRange),
		errors.Is(err, domainErrors.ErrCouponNotApplicable),
		errors.Is(err, pkgAuth.ErrPasswordTooShort):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, dto.ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(status, dto.ErrorResponse{Error: err.Error()})
}

// bindJSON decodes the body into dst and answers 400, or 413 when the
// inflated body exceeds the decompression limit.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	switch {
	case err == nil:
		return true
	case middleware.IsBodyTooLarge(err):
		c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "request body too large"})
	default:
		badRequest(c, "malformed request body")
	}
	return false
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msg})
}
