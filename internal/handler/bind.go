package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/tennis-players-service/internal/service"
)

const msgInvalidID = "Invalid player ID"

// parseID reads the :id path parameter as an integer.
func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil {
		return 0, service.NewInvalidInputError([]service.FieldError{{Field: "id", Message: msgInvalidID}})
	}
	return id, nil
}

// bindJSON decodes the request body into dst. Wrong JSON types are reported on
// the offending field; unknown keys are ignored.
func bindJSON(c *gin.Context, dst any) error {
	err := json.NewDecoder(c.Request.Body).Decode(dst)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return service.NewInvalidInputError([]service.FieldError{{Field: "body", Message: "Request body is required"}})
	case errors.As(err, &typeErr) && typeErr.Field == "id":
		return service.NewInvalidInputError([]service.FieldError{{Field: "id", Message: service.MsgIDNotInteger}})
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return service.NewInvalidInputError([]service.FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("Invalid %s: expected %s", typeErr.Field, typeErr.Type.Kind()),
		}})
	default:
		return service.NewInvalidInputError([]service.FieldError{{Field: "body", Message: "Invalid JSON payload"}})
	}
}
