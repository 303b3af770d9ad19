package validate

import (
	"github.com/ShiraazMoollatjie/goluhn"
)

const ReferralCodeLength = 10

func IsLuhn(s string) bool {
	err := goluhn.Validate(s)
	return err == nil
}

// IsReferralCode checks shape and check digit without touching storage.
func IsReferralCode(s string) bool {
	return len(s) == ReferralCodeLength && IsLuhn(s)
}

func NewReferralCode() string {
	return goluhn.Generate(ReferralCodeLength)
}
