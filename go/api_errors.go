package portalserver

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	portalapp "github.com/Apurer/vaccine-portal/internal/domains/portal/application"
	apierrors "github.com/Apurer/vaccine-portal/internal/shared/errors"
)

// respondFailure renders err as a problem whose detail is the message the screen shows.
func respondFailure(c *gin.Context, action string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, portalapp.ErrNotInView) {
		apierrors.RespondNotInView(c, err)
		return
	}
	apierrors.RespondFailure(c, action, err)
}

// respondBadRequest answers a request body or parameter the surface could not read.
func respondBadRequest(c *gin.Context, err error) {
	apierrors.RespondBadRequest(c, err.Error())
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		apierrors.RespondBadRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}
