package domain

import (
	"strconv"

	dErrors "menuapi/pkg/domain-errors"
)

// MenuID identifies a menu row. Valid IDs are positive.
type MenuID int

// ParseMenuID parses a path parameter into a MenuID.
func ParseMenuID(s string) (MenuID, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid menu id")
	}
	return MenuID(n), nil
}

func (id MenuID) Int() int {
	return int(id)
}

func (id MenuID) String() string {
	return strconv.Itoa(int(id))
}
