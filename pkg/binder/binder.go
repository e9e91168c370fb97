package binder

import (
	"encoding/json"
	"net/http"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/mold/v4"
	"github.com/go-playground/mold/v4/modifiers"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
)

// AllowEmptyBodyKey is the context key that, when set to true, lets
// POST/PUT requests without a body through the binder. Used by routes whose
// inputs are entirely in the path.
const AllowEmptyBodyKey = "allow_empty_body"

var unknownFieldsRE = regexp.MustCompile(`^json: unknown field "(.*)"$`)

// Binder is a custom struct that implements the Echo Binder interface. It binds
// path params, query strings and JSON bodies to a struct, uses mold to clean up
// the params, and validator to validate them.
type Binder struct {
	paramDecoder *schema.Decoder
	queryDecoder *schema.Decoder
	conform      *mold.Transformer
	validate     *validator.Validate
}

// New initializes a new Binder instance with the appropriate validation
// functions registered.
func New() (*Binder, error) {
	paramDecoder := schema.NewDecoder()
	paramDecoder.SetAliasTag("param")
	paramDecoder.IgnoreUnknownKeys(true)
	queryDecoder := schema.NewDecoder()
	queryDecoder.SetAliasTag("query")
	conform := modifiers.New()
	validate := validator.New()
	validate.RegisterTagNameFunc(fieldName)
	if err := validate.RegisterValidation("date", dateValidator); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := validate.RegisterValidation("condition", conditionValidator); err != nil {
		return nil, errors.WithStack(err)
	}

	return &Binder{paramDecoder, queryDecoder, conform, validate}, nil
}

// AllowEmptyBody is route middleware that marks the request as not needing a
// body.
func AllowEmptyBody(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(AllowEmptyBodyKey, true)
		return next(c)
	}
}

// Bind binds, modifies, and validates payloads against the given struct.
func (b *Binder) Bind(i interface{}, c echo.Context) error {
	req := c.Request()
	log := logger.FromEchoContext(c)

	if names := c.ParamNames(); len(names) > 0 {
		params := url.Values{}
		for idx, value := range c.ParamValues() {
			if idx < len(names) {
				params.Set(names[idx], value)
			}
		}
		if err := b.decode(i, params, b.paramDecoder); err != nil {
			return err
		}
	}

	allowEmptyBody, _ := c.Get(AllowEmptyBodyKey).(bool)

	if req.ContentLength > 0 {
		ctype := req.Header.Get(echo.HeaderContentType)
		if !strings.HasPrefix(ctype, echo.MIMEApplicationJSON) {
			return errcodes.UnsupportedMediaType()
		}

		dec := json.NewDecoder(req.Body)
		dec.DisallowUnknownFields()
		defer req.Body.Close()
		if err := dec.Decode(i); err != nil {
			// return better error message when there are unknown fields
			if matches := unknownFieldsRE.FindAllStringSubmatch(err.Error(), -1); len(matches) > 0 && len(matches[0]) > 1 {
				return errcodes.UnknownParameter(matches[0][1])
			}

			// return better error message on type errors
			if err, ok := err.(*json.UnmarshalTypeError); ok {
				msg := formatUnmarshalTypeError(err)
				return errcodes.ValidationTypeError(msg)
			}

			log.Err(err).Warn("unknown json decode error")

			return errcodes.MalformedPayload()
		}
	} else {
		switch {
		case req.Method == http.MethodGet || req.Method == http.MethodDelete:
			if err := b.decode(i, c.QueryParams(), b.queryDecoder); err != nil {
				return err
			}
		case !allowEmptyBody:
			return errcodes.EmptyRequestBody()
		}
	}

	if err := b.conform.Struct(req.Context(), i); err != nil {
		return errors.WithStack(err)
	}

	if err := defaults.Set(i); err != nil {
		return errors.WithStack(err)
	}

	if err := b.validate.Struct(i); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return errors.WithStack(err)
		}
		msg := formatValidationError(errs[0])
		return errcodes.ValidationError(msg)
	}
	return nil
}

func (b *Binder) decode(i interface{}, params url.Values, decoder *schema.Decoder) error {
	if err := decoder.Decode(i, params); err != nil {
		if errs, ok := err.(schema.MultiError); ok {
			var err error
			for _, err = range errs {
				break
			}

			if err, ok := err.(schema.ConversionError); ok {
				msg := formatSchemaConversionError(err)
				return errcodes.ValidationTypeError(msg)
			}
			if err, ok := err.(schema.UnknownKeyError); ok {
				return errcodes.UnknownParameter(err.Key)
			}

			return errors.WithStack(err)
		}
		return errors.WithStack(err)
	}
	return nil
}

// fieldName reports a struct field by the name the client used for it: the
// JSON key, or the path/query parameter name for fields not in the body.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "param", "query"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return ""
}
