package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/degreetracker/internal/app/models/dto"
	"github.com/yigit/degreetracker/internal/pkg/apperrors"
	"github.com/yigit/degreetracker/internal/pkg/validation"
)

// RegisterBindingRules adds the application's custom validation tags to gin's binding validator
func RegisterBindingRules() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterRules(v)
	}
}

// BindRequest binds a form or JSON body into obj and validates it. Failures come back as
// validation errors carrying the first failed field's message.
func BindRequest(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBind(obj); err != nil {
		return apperrors.NewValidationError(dto.HandleValidationError(err).Message)
	}
	return nil
}
