package pkg

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// IntVar reads a positive integer route variable.
func IntVar(r *http.Request, name string) (int, error) {
	valStr := mux.Vars(r)[name]
	if valStr == "" {
		return 0, fmt.Errorf("error, %s empty", name)
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("error, %s NaN", name)
	}
	if val < 1 {
		return 0, fmt.Errorf("invalid %s (has to be non-zero value)", name)
	}
	return val, nil
}
