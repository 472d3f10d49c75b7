package auth

import (
	"nfinite/errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "DEFAULT"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	// Wrong password
	match, err = ComparePassword("default", hash)
	req.NoError(err)
	req.False(match)
}

func TestHashPassword_Salted(t *testing.T) {
	req := require.New(t)

	first, err := HashPassword("same")
	req.NoError(err)
	second, err := HashPassword("same")
	req.NoError(err)

	req.NotEqual(first, second)
}

func TestComparePassword_InvalidHash(t *testing.T) {
	req := require.New(t)

	for _, hash := range []string{"", "plain", "$bcrypt$v=1$m=1,t=1,p=1$c2FsdA$aGFzaA", "$argon2id$v=x$m=1,t=1,p=1$c2FsdA$aGFzaA"} {
		_, err := ComparePassword("pw", hash)
		req.ErrorIs(err, ErrInvalidHash, hash)
	}
}

func TestValidateCredentials(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		creds   Credentials
		wantErr bool
	}{
		{"Default credentials", Credentials{"DEFAULT", "DEFAULT"}, false},
		{"Empty name", Credentials{"", "pw"}, true},
		{"Empty password", Credentials{"alice", ""}, true},
		{"Hub storer name", Credentials{"@hub", "pw"}, true},
		{"Path separator", Credentials{"a/b", "pw"}, true},
		{"Surrounding spaces", Credentials{" alice", "pw"}, true},
		{"Password too long", Credentials{"alice", strings.Repeat("a", 73)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCredentials(tt.creds)
			if tt.wantErr {
				req.ErrorIs(err, errors.ErrInvalidCredentials)
			} else {
				req.NoError(err)
			}
		})
	}
}

func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}
