package tool

import (
	"math"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// ParseNumber разбирает значение числового поля формы. Пустая строка, NaN и
// бесконечности числом не считаются
func ParseNumber(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("пустое значение")
	}
	number, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.Annotatef(err, "значение %q не число", value)
	}
	if math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, errors.Errorf("значение %q не конечное число", value)
	}
	return number, nil
}
