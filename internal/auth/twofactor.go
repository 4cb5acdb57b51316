package auth

// TwoFactorVerifier checks a second-factor code for a user. Swapping in a
// TOTP implementation only requires satisfying this interface.
type TwoFactorVerifier interface {
	Verify(userID, code string) bool
}

// MockTwoFactorVerifier accepts any syntactically valid 6-digit code. It
// stands in until a real TOTP provider is wired up.
type MockTwoFactorVerifier struct{}

func NewMockTwoFactorVerifier() *MockTwoFactorVerifier {
	return &MockTwoFactorVerifier{}
}

func (MockTwoFactorVerifier) Verify(_ string, code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
