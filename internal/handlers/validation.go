package handlers

import (
	"fmt"
	"reflect"
	"strings"

	"storefront/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Guards are the auth middlewares routes are mounted behind.
type Guards struct {
	Protect  fiber.Handler
	Optional fiber.Handler
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind parses the request body into dst and validates it. Failures come
// back as Validation errors carrying one message per field.
func bind(c *fiber.Ctx, v *validator.Validate, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		e := apperr.Validation("Invalid request body")
		e.Err = err
		return e
	}
	if err := v.Struct(dst); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return apperr.Internal(err, "validation failed")
		}
		fields := make(map[string]string, len(validationErrors))
		for _, fe := range validationErrors {
			key := fe.Namespace()
			if i := strings.Index(key, "."); i >= 0 {
				key = key[i+1:]
			}
			fields[key] = fmt.Sprintf("Field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
		}
		return apperr.Validation("Validation failed").WithFields(fields)
	}
	return nil
}
