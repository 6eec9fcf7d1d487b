package errors

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// Respond writes problem and aborts the handler chain. The request path becomes the
// instance when none is set.
func Respond(c *gin.Context, problem ProblemDetail) {
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// RespondFailure classifies err under action. A ProblemDetail passed as err is sent as-is.
func RespondFailure(c *gin.Context, action string, err error) {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		Respond(c, problem)
		return
	}
	_ = c.Error(err)
	Respond(c, ProblemFor(action, err))
}

// RespondBadRequest answers input the handler could not read.
func RespondBadRequest(c *gin.Context, detail string) {
	Respond(c, ProblemBadRequest.WithDetail(detail))
}

// RespondNotInView answers an intent naming a record the screen is not showing.
func RespondNotInView(c *gin.Context, err error) {
	Respond(c, ProblemNotInView.WithDetail(err.Error()).WithExtension("retryable", false))
}
