package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"habittracker/internal/hateoas"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindJSONOrError ensures body is present, parsable and valid.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "empty_body", "body kosong", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			respondError(c, http.StatusBadRequest, "empty_body", "body kosong", nil)
			return false
		}
		respondError(c, http.StatusBadRequest, "validation_error", "payload tidak valid", validationDetails(err))
		return false
	}
	return true
}

const maxPatchBytes = 1 << 20

// readRawBody returns the request body for endpoints that decode it
// themselves, such as JSON Patch.
func readRawBody(c *gin.Context) ([]byte, bool) {
	if c.Request.Body == nil {
		respondError(c, http.StatusBadRequest, "empty_body", "body kosong", nil)
		return nil, false
	}
	doc, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPatchBytes))
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "body tidak terbaca", err.Error())
		return nil, false
	}
	if len(doc) == 0 {
		respondError(c, http.StatusBadRequest, "empty_body", "body kosong", nil)
		return nil, false
	}
	return doc, true
}

// validationDetails lists failed fields by their json path.
func validationDetails(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[jsonPath(fe.Namespace())] = fmt.Sprintf("gagal aturan '%s'", fe.Tag())
	}
	return out
}

// jsonPath drops the struct name from "CreateHabitDTO.target.unit".
func jsonPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// writeJSON sends data with the hypermedia media type when the client asked
// for it.
func writeJSON(c *gin.Context, status int, includeLinks bool, data any) {
	if includeLinks {
		c.Header("Content-Type", hateoas.HateoasJSON)
	}
	c.JSON(status, data)
}
