package http

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	cityCharset     = regexp.MustCompile(`^[a-zA-ZÀ-ÿ\x{0100}-\x{017F}\x{0400}-\x{04FF}\s\-'.]+$`)
	cityOnlySpecial = regexp.MustCompile(`^[\s\-'.]+$`)
	citySuspicious  = []*regexp.Regexp{
		regexp.MustCompile(`\s{2,}`),
		regexp.MustCompile(`^[\-'.]+`),
		regexp.MustCompile(`[\-'.]+$`),
		regexp.MustCompile(`[\-'.]{2,}`),
	}
)

// checkCityName accepts letters (Latin, Latin-1, Latin Extended-A,
// Cyrillic), single spaces and isolated inner hyphens, apostrophes or dots.
func checkCityName(city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return errors.New("City name cannot be empty")
	}
	if !cityCharset.MatchString(city) {
		return errors.New("City name can only contain letters, spaces, hyphens, apostrophes and dots. " +
			"Numbers and special characters are not allowed.")
	}
	if cityOnlySpecial.MatchString(city) {
		return errors.New("City name must contain at least one letter")
	}
	for _, p := range citySuspicious {
		if p.MatchString(city) {
			return errors.Errorf("Invalid city name format: '%s'", city)
		}
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("cityname", func(fl validator.FieldLevel) bool {
		return checkCityName(fl.Field().String()) == nil
	})
	return v
}

// validationDetail turns the first failed rule into a client message.
func validationDetail(q weatherQuery, err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid query parameters"
	}

	switch verrs[0].Tag() {
	case "required":
		return "Query parameter 'city' is required"
	case "min", "max":
		return "City name must be between 2 and 100 characters"
	case "cityname":
		if cerr := checkCityName(q.City); cerr != nil {
			return cerr.Error()
		}
	}
	return "Invalid query parameters"
}
