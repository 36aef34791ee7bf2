package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/linskybing/survey-platform/pkg/errs"
	"github.com/linskybing/survey-platform/pkg/response"
)

var kindStatus = map[errs.Kind]int{
	errs.KindValidation:    http.StatusBadRequest,
	errs.KindPermission:    http.StatusForbidden,
	errs.KindNotFound:      http.StatusNotFound,
	errs.KindLimitExceeded: http.StatusConflict,
	errs.KindState:         http.StatusConflict,
	errs.KindExpired:       http.StatusGone,
}

// StatusFor maps an error from the services to an HTTP status.
func StatusFor(err error) int {
	if status, ok := kindStatus[errs.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, response.ErrorResponse{Error: "internal server error"})
		return
	}
	body := response.ErrorResponse{Error: err.Error(), Kind: errs.KindOf(err)}
	var e *errs.Error
	if errors.As(err, &e) {
		body.Violations = e.Violations
	}
	c.JSON(status, body)
}

// respondBindError turns gin binding failures into friendly 400 responses.
func respondBindError(c *gin.Context, err error) {
	var verr validator.ValidationErrors
	if !errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid request: " + err.Error(), Kind: errs.KindValidation})
		return
	}

	violations := make([]errs.Violation, 0, len(verr))
	msgs := make([]string, 0, len(verr))
	for _, fe := range verr {
		lbl := fe.Field()
		var msg string
		switch fe.Tag() {
		case "required":
			msg = "is required"
		case "min":
			msg = fmt.Sprintf("must be at least %s", fe.Param())
		case "max":
			msg = fmt.Sprintf("must be at most %s", fe.Param())
		case "oneof":
			msg = fmt.Sprintf("must be one of [%s]", fe.Param())
		default:
			msg = "is invalid"
		}
		violations = append(violations, errs.Violation{FieldCode: lbl, Rule: fe.Tag(), Message: msg})
		msgs = append(msgs, lbl+" "+msg)
	}
	c.JSON(http.StatusBadRequest, response.ErrorResponse{
		Error:      strings.Join(msgs, "; "),
		Kind:       errs.KindValidation,
		Violations: violations,
	})
}

// UseJSONFieldNames makes binding errors report json tag names instead of Go field names.
func UseJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
}
