package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	applog "nutricalc/internal/log"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	english := en.New()
	translator, _ = ut.New(english, english).GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(err)
	}
}

type validationError struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// fieldErrors keys each failure by its JSON path without the root struct,
// e.g. "ingredients[0].quantity".
func fieldErrors(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		key := fe.Namespace()
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		fields[key] = fe.Translate(translator)
	}
	return fields
}

// normalizer is implemented by request bodies that clean up their fields
// before validation runs.
type normalizer interface {
	normalize()
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// On failure it writes the response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		applog.Debug(r.Context(), "failed to decode json payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid json payload")
		return false
	}
	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := fieldErrors(validationErrors)
			applog.Debug(r.Context(), "payload failed validation", "fields", len(fields))
			writeJSON(w, http.StatusUnprocessableEntity, validationError{Error: "validation failed", Fields: fields})
			return false
		}
		applog.Error(r.Context(), "unexpected validation error", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to validate payload")
		return false
	}
	return true
}
