package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type normalizer interface {
	Normalize()
}

// decodeJSON strictly decodes the body into dst: unknown fields and trailing
// data are rejected. Syntax problems are 400; well-formed bodies with the
// wrong shape are 422.
func decodeJSON(c *fiber.Ctx, dst interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return badRequest("Request body is empty")
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return badRequest("Malformed JSON body")
		case errors.As(err, &typeErr):
			return unprocessable("Validation error", []fieldError{{Field: typeErr.Field, Rule: "type", Param: typeErr.Type.String()}})
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
			return unprocessable("Validation error", []fieldError{{Field: field, Rule: "unknown"}})
		default:
			return unprocessable("Validation error", err.Error())
		}
	}
	if dec.More() {
		return badRequest("Malformed JSON body")
	}
	if n, ok := dst.(normalizer); ok {
		n.Normalize()
	}
	return nil
}

// parseBody decodes and validates a JSON request body.
func parseBody(c *fiber.Ctx, v *validator.Validate, dst interface{}) error {
	if err := decodeJSON(c, dst); err != nil {
		return err
	}
	return v.Struct(dst)
}

func success(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"success": true,
		"status":  status,
		"data":    data,
	})
}
