package validators

import "strings"

const countryCode = "55"

// NormalizePhone reduz um número de WhatsApp à forma canônica:
// somente dígitos, com DDI 55. A operação é idempotente.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if digits == "" {
		return ""
	}

	if !strings.HasPrefix(digits, countryCode) {
		digits = countryCode + digits
	}

	return digits
}

// IsPhoneValid aceita números já normalizados com DDD + número (10 ou 11 dígitos locais)
func IsPhoneValid(phone string) bool {
	n := len(NormalizePhone(phone))
	return n >= 12 && n <= 13
}
