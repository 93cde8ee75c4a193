package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	stdhttp "net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// maxBodyBytes bounds request bodies. Script content can be large.
const maxBodyBytes = 8 << 20

var (
	validateOnce sync.Once
	validate     *validator.Validate
	translator   ut.Translator
)

func validatorInstance() (*validator.Validate, ut.Translator) {
	validateOnce.Do(func() {
		enLoc := en.New()
		trans, _ := ut.New(enLoc, enLoc).GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		// prefer json tag names in messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)
		validate, translator = v, trans
	})
	return validate, translator
}

// errBind marks malformed or invalid request bodies.
var errBind = errors.New("invalid request body")

// parseJSON decodes and validates a request body into T.
func parseJSON[T any](r *stdhttp.Request) (T, error) {
	var zero T
	defer r.Body.Close()

	var dst T
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&dst); err != nil {
		if errors.Is(err, io.EOF) {
			return zero, fmt.Errorf("%w: empty body", errBind)
		}
		return zero, fmt.Errorf("%w: %v", errBind, err)
	}

	v, trans := validatorInstance()
	if err := v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return zero, fmt.Errorf("%w: %s", errBind, verrs[0].Translate(trans))
		}
		return zero, fmt.Errorf("%w: %v", errBind, err)
	}
	return dst, nil
}
