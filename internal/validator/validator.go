package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// trans is the singleton English translator for validation errors.
var trans = func() ut.Translator {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	t, _ := uni.GetTranslator("en")
	return t
}()

var (
	standalone     *govalidator.Validate
	standaloneOnce sync.Once
)

// Setup registers the validator with English translations on Gin's binding engine.
// Call once during application startup.
func Setup() {
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		register(v)
	}
}

// register makes v report fields by their json (or env) tag and attaches
// the English translations.
func register(v *govalidator.Validate) {
	v.RegisterTagNameFunc(tagName)
	en_translations.RegisterDefaultTranslations(v, trans)
}

func tagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		name = fld.Tag.Get("env")
	}
	return name
}

// Struct validates v outside of a request, for configuration and queue
// payloads. It returns nil when v is valid.
func Struct(v interface{}) map[string]string {
	standaloneOnce.Do(func() {
		standalone = govalidator.New(govalidator.WithRequiredStructEnabled())
		register(standalone)
	})
	if err := standalone.Struct(v); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// BindError is a request that could not be bound. Malformed is set when
// the input never reached validation, such as a JSON syntax error or a
// query value of the wrong type.
type BindError struct {
	Malformed bool
	Fields    map[string]string
}

func (e *BindError) Error() string {
	if e.Malformed {
		return "malformed request: " + e.Fields["detail"]
	}
	return fmt.Sprintf("request failed validation on %d field(s)", len(e.Fields))
}

func bindError(err error) *BindError {
	var ve govalidator.ValidationErrors
	return &BindError{Malformed: !errors.As(err, &ve), Fields: TranslateErrors(err)}
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name → human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the JSON request body into dst.
func Bind(c *gin.Context, dst interface{}) *BindError {
	if err := c.ShouldBindJSON(dst); err != nil {
		return bindError(err)
	}
	return nil
}

// BindQuery binds and validates query parameters into dst.
func BindQuery(c *gin.Context, dst interface{}) *BindError {
	if err := c.ShouldBindQuery(dst); err != nil {
		return bindError(err)
	}
	return nil
}

// BindURI binds and validates path parameters into dst.
func BindURI(c *gin.Context, dst interface{}) *BindError {
	if err := c.ShouldBindUri(dst); err != nil {
		return bindError(err)
	}
	return nil
}
