package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/avkrapivin/top-me-up-sub000/internal/apperr"
	"github.com/avkrapivin/top-me-up-sub000/internal/middleware"
	"github.com/avkrapivin/top-me-up-sub000/internal/models"
	"github.com/avkrapivin/top-me-up-sub000/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// OK writes a successful envelope.
func OK(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

// Fail writes the error envelope. Internal errors are logged and masked.
func Fail(c *gin.Context, log *zap.Logger, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error("request error",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    apperr.CodeOf(err),
			"message": apperr.PublicMessage(err),
		},
	})
}

// idParam reads a positive numeric path parameter.
func idParam(c *gin.Context, name string) (uint, error) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		return 0, apperr.InvalidArgument("invalid %s", name)
	}
	return id, nil
}

// bindJSON decodes the body into obj and turns binding failures into INVALID_ARGUMENT.
func bindJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return bindingError(err)
	}
	return nil
}

func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required", "notblank":
			return apperr.InvalidArgument("%s is required", fe.Field())
		case "max":
			return apperr.InvalidArgument("%s must be at most %s", fe.Field(), fe.Param())
		case "min":
			return apperr.InvalidArgument("%s must be at least %s", fe.Field(), fe.Param())
		default:
			return apperr.InvalidArgument("%s is invalid", fe.Field())
		}
	}
	return apperr.InvalidArgument("malformed request body")
}

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by request types.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		mustRegister(v, "category", func(fl validator.FieldLevel) bool {
			return models.Category(fl.Field().String()).Valid()
		})
	})
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}
