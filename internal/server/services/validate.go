package services

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/kalahboard/internal/common"
)

func validateUserName(userName string) error {
	if strings.TrimSpace(userName) == "" {
		return fmt.Errorf("%w: username is required", common.ErrValidation)
	}
	return nil
}

// validateEmail accepts a bare address only, so "Name <a@b.c>" is rejected.
func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email address", common.ErrValidation)
	}
	return nil
}
