package validate

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ppiankov/pap/internal/model"
)

// ErrValidation wraps every user-input rejection
var ErrValidation = errors.New("invalid input")

var inputValidate *validator.Validate

func init() {
	inputValidate = validator.New(validator.WithRequiredStructEnabled())

	// report json names so messages match the wire format
	inputValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = inputValidate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseCategory(fl.Field().String())
		return ok
	})
	_ = inputValidate.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseStatus(fl.Field().String())
		return ok
	})
	_ = inputValidate.RegisterValidation("source_type", func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, t := range model.SourceTypes() {
			if strings.EqualFold(v, string(t)) {
				return true
			}
		}
		return false
	})
}

// ClaimInput checks a create-or-edit payload and canonicalizes its enum values
// and source types in place
func ClaimInput(in *model.ClaimInput) error {
	if err := inputValidate.Struct(in); err != nil {
		return wrap(err)
	}

	if in.Category != "" {
		in.Category, _ = model.ParseCategory(string(in.Category))
	}
	if in.Status != "" {
		in.Status, _ = model.ParseStatus(string(in.Status))
	}
	in.Sources = NormalizeSources(in.Sources)
	return nil
}

// ClaimantPatch checks a claimant update
func ClaimantPatch(p *model.ClaimantPatch) error {
	if err := inputValidate.Struct(p); err != nil {
		return wrap(err)
	}
	return nil
}

// AnalysisParams checks a replacement checklist
func AnalysisParams(params []model.AnalysisParam) error {
	if len(params) > 30 {
		return fmt.Errorf("%w: at most 30 checklist items", ErrValidation)
	}
	for i := range params {
		if err := inputValidate.Struct(&params[i]); err != nil {
			return fmt.Errorf("item %d: %w", i, wrap(err))
		}
	}
	return nil
}

// SourceURL checks that raw is an absolute http(s) URL with a host
func SourceURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: url %q must be absolute http or https", ErrValidation, raw)
	}
	return nil
}

// NormalizeSources canonicalizes known source types and fills in missing types
// from the URL host
func NormalizeSources(sources []model.ClaimSource) []model.ClaimSource {
	if sources == nil {
		return nil
	}
	out := make([]model.ClaimSource, len(sources))
	for i, s := range sources {
		s.URL = strings.TrimSpace(s.URL)
		switch {
		case s.Type != "":
			for _, t := range model.SourceTypes() {
				if strings.EqualFold(string(s.Type), string(t)) {
					s.Type = t
				}
			}
		case s.URL != "":
			s.Type = ClassifySource(s.URL)
		}
		out[i] = s
	}
	return out
}

func wrap(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "datetime":
		return field + " must be a date in YYYY-MM-DD form"
	case "url", "http_url":
		return field + " must be a valid URL"
	case "category":
		return fmt.Sprintf("%s %q is not a known category", field, fe.Value())
	case "status":
		return fmt.Sprintf("%s %q is not a known status", field, fe.Value())
	case "source_type":
		return fmt.Sprintf("%s %q is not a known source type", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
