package models

import (
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// GenerateTOTPSecret enrols username with a fresh secret. The returned key
// carries both the base32 secret and the otpauth:// URL for authenticator apps.
func GenerateTOTPSecret(username, issuer string) (*otp.Key, error) {
	return totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: username,
	})
}

// VerifyCode checks a one-time code at now, tolerating one period of clock skew.
// It always passes when the admin has no TOTP secret.
func (a *Admin) VerifyCode(code string, now time.Time) bool {
	if !a.TOTPEnabled() {
		return true
	}
	ok, err := totp.ValidateCustom(strings.TrimSpace(code), a.TOTPSecret, now, totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
