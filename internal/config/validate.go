package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator that also knows the "mac" list format used
// by the wake-on-LAN setting.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("maclist", func(fl validator.FieldLevel) bool {
		return ValidMacList(fl.Field().String())
	})
	return v
}

// ValidMac accepts exactly the colon form "AA:BB:CC:DD:EE:FF".
func ValidMac(mac string) bool {
	if len(mac) != 17 {
		return false
	}
	for i := 0; i < len(mac); i++ {
		c := mac[i]
		if (i+1)%3 == 0 {
			if c != ':' {
				return false
			}
			continue
		}
		if !isHex(c) {
			return false
		}
	}
	return true
}

// ValidMacList accepts MACs separated by commas, semicolons or whitespace.
func ValidMacList(list string) bool {
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return strings.TrimSpace(list) == ""
	}
	for _, f := range fields {
		if !ValidMac(f) {
			return false
		}
	}
	return true
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
