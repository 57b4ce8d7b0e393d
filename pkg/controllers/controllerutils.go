package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"agrimarket-api-io/api/internal/auth"
	"agrimarket-api-io/api/internal/common"
	"agrimarket-api-io/api/pkg/models"
	"agrimarket-api-io/api/pkg/services"
	"agrimarket-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var requestTimeout = common.REQUEST_TIMEOUT_SECS

// SetRequestTimeout overrides the per-request deadline used by WithTimeout.
func SetRequestTimeout(d time.Duration) {
	if d > 0 {
		requestTimeout = d
	}
}

// WithTimeout derives the handler context from the request so a client
// disconnect cancels in-flight database work.
func WithTimeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// CurrentActor returns the authenticated caller or answers 401.
func CurrentActor(c *gin.Context) (services.Actor, bool) {
	session, err := auth.CurrentUser(c)
	if err != nil {
		util.HandleError(c, http.StatusUnauthorized, err)
		return services.Actor{}, false
	}
	return services.Actor{UserID: session.UserID, Role: session.Role}, true
}

// ParseObjectIDParam parses an ObjectID from URL parameter and handles errors
func ParseObjectIDParam(c *gin.Context, paramName string) (primitive.ObjectID, bool) {
	idString := c.Param(paramName)
	if idString == "" {
		util.HandleError(c, http.StatusBadRequest, errors.Errorf("missing %s", paramName))
		return primitive.NilObjectID, false
	}

	objectID, err := primitive.ObjectIDFromHex(idString)
	if err != nil {
		util.HandleError(c, http.StatusBadRequest, errors.Wrapf(err, "invalid %s", paramName))
		return primitive.NilObjectID, false
	}

	return objectID, true
}

// ParseVendorRoleParam accepts "farmer", "delivery_agent" or "delivery-agent".
func ParseVendorRoleParam(c *gin.Context, paramName string) (models.VendorRole, bool) {
	role, err := models.ParseVendorRole(strings.ReplaceAll(c.Param(paramName), "-", "_"))
	if err != nil {
		util.HandleError(c, http.StatusBadRequest, err)
		return "", false
	}
	return role, true
}

// optionalVendorRole reads an optional role query value; empty means any.
func optionalVendorRole(c *gin.Context, key string) (models.VendorRole, bool) {
	raw := strings.ReplaceAll(c.Query(key), "-", "_")
	if raw == "" {
		return "", true
	}
	role, err := models.ParseVendorRole(raw)
	if err != nil {
		util.HandleError(c, http.StatusBadRequest, err)
		return "", false
	}
	return role, true
}

// BindJSONAndValidate binds JSON and handles validation errors
func BindJSONAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		util.HandleError(c, http.StatusBadRequest, errors.Wrap(err, "invalid request body"))
		return false
	}

	if err := common.Validate.Struct(obj); err != nil {
		util.HandleError(c, http.StatusBadRequest, err)
		return false
	}

	return true
}

// queryBool parses an optional boolean query value.
func queryBool(c *gin.Context, key string) (*bool, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		util.HandleError(c, http.StatusBadRequest, errors.Errorf("%s must be true or false", key))
		return nil, false
	}
	return &v, true
}

// HandlePaginationAndResponse is a utility for common pagination responses
func HandlePaginationAndResponse(c *gin.Context, data any, count int64, paginationArgs util.PaginationArgs, message string) {
	util.HandleSuccessMeta(c, http.StatusOK, message, data, gin.H{
		"pagination": util.Pagination{
			Limit: paginationArgs.Limit,
			Skip:  paginationArgs.Skip,
			Count: count,
		},
	})
}

// ErrorStatus maps a service error to its HTTP status.
func ErrorStatus(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrBadRequest), errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// HandleServiceError answers with the status ErrorStatus picks. Internal
// details are logged but not returned to the client.
func HandleServiceError(c *gin.Context, err error) {
	status := ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		util.WithFields(logrus.Fields{"path": c.FullPath()}).WithError(err).Error("unhandled service error")
		util.HandleError(c, status, errors.New(http.StatusText(status)))
		return
	}
	util.HandleError(c, status, err)
}
