package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/relgraph/graphengine/internal/engine"
)

// respondEngineError maps a typed engine error to the appropriate HTTP
// status/code, logging backend failures and returning a generic message for
// anything unrecognized.
func respondEngineError(c *gin.Context, log *logrus.Logger, op string, err error) {
	switch e := err.(type) {
	case *engine.SubgraphTooLargeError:
		respondError(c, http.StatusUnprocessableEntity, ErrCodeTooLarge, e.Error())
	case *engine.SafetyLimitExceededError:
		respondError(c, http.StatusUnprocessableEntity, ErrCodeSafetyLimit, e.Error())
	case *engine.InvalidArgumentError:
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, e.Error())
	case *engine.NotFoundError:
		respondError(c, http.StatusNotFound, ErrCodeNotFound, e.Error())
	default:
		log.WithError(err).WithField("op", op).Error("engine call failed")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
