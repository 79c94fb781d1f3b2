package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// e164Regex номер в международном формате: '+' и до 15 цифр, без ведущего нуля.
var e164Regex = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// IsE164 сообщает, соответствует ли номер формату E.164.
func IsE164(phone string) bool {
	return e164Regex.MatchString(phone)
}

// ValidatePhoneE164 проверяет номер телефона.
func ValidatePhoneE164(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return fmt.Errorf("phone is required")
	}
	if !IsE164(phone) {
		return fmt.Errorf("Invalid phone number format. Use E.164 format (e.g., +1234567890)")
	}
	return nil
}

// ValidateOTPCode проверяет код подтверждения.
func ValidateOTPCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("code is required")
	}
	if len(code) < 4 || len(code) > 10 {
		return fmt.Errorf("code must be 4 to 10 characters")
	}
	return nil
}
