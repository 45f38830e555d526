package google

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateAccountName(t *testing.T) {
	tests := []struct {
		name    string
		account string
		wantErr bool
	}{
		{"valid default", "default", false},
		{"valid work", "work", false},
		{"valid with hyphen", "work-email", false},
		{"valid with underscore", "personal_email", false},
		{"valid alphanumeric", "account123", false},
		{"empty", "", true},
		{"with spaces", "my account", true},
		{"with special chars", "account@work", true},
		{"with slash", "work/personal", true},
		{"with dot", "work.email", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAccountName(tt.account)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAccountName() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetTokenFilePath(t *testing.T) {
	tests := []struct {
		name    string
		account string
		want    string
	}{
		{"default account", "default", "google-default.token"},
		{"work account", "work", "google-work.token"},
		{"personal account", "personal", "google-personal.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := getTokenFilePath(tt.account)
			if filepath.Base(got) != tt.want {
				t.Errorf("getTokenFilePath() = %v, want base %v", got, tt.want)
			}
		})
	}
}

func TestHasTokenForAccount(t *testing.T) {
	// Invalid account names never have tokens
	if HasTokenForAccount("invalid account") {
		t.Error("HasTokenForAccount() should return false for invalid account name")
	}
	if HasTokenForAccount("") {
		t.Error("HasTokenForAccount() should return false for empty account name")
	}
}

func TestGetAuthenticationErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		account string
	}{
		{"default account", "default"},
		{"work account", "work"},
		{"personal account", "personal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := GetAuthenticationErrorMessage(tt.account)
			if msg == "" {
				t.Error("GetAuthenticationErrorMessage() should return non-empty message")
			}
			if !strings.Contains(msg, tt.account) {
				t.Errorf("GetAuthenticationErrorMessage() should mention account %s", tt.account)
			}
			if !strings.Contains(msg, "OAuth") {
				t.Error("GetAuthenticationErrorMessage() should mention OAuth")
			}
		})
	}
}

func TestDefaultAccountFunctions(t *testing.T) {
	// Legacy functions must match the explicit default-account variants
	defaultResult := HasTokenForAccount("default")
	legacyResult := HasToken()
	if defaultResult != legacyResult {
		t.Error("HasToken() should return same result as HasTokenForAccount('default')")
	}
}

func TestGetOAuthConfigEnvResolution(t *testing.T) {
	t.Run("documented env vars", func(t *testing.T) {
		t.Setenv("GOOGLE_CLIENT_ID", "id-from-google-env")
		t.Setenv("GOOGLE_CLIENT_SECRET", "secret-from-google-env")
		t.Setenv("FLOWSPACE_OAUTH_CLIENT_ID", "")
		t.Setenv("FLOWSPACE_OAUTH_CLIENT_SECRET", "")

		conf := GetOAuthConfig()
		if conf.ClientID != "id-from-google-env" {
			t.Errorf("ClientID = %q, want id-from-google-env", conf.ClientID)
		}
		if conf.ClientSecret != "secret-from-google-env" {
			t.Errorf("ClientSecret = %q, want secret-from-google-env", conf.ClientSecret)
		}
	})

	t.Run("fallback env vars", func(t *testing.T) {
		t.Setenv("GOOGLE_CLIENT_ID", "")
		t.Setenv("GOOGLE_CLIENT_SECRET", "")
		t.Setenv("FLOWSPACE_OAUTH_CLIENT_ID", "id-from-fallback")
		t.Setenv("FLOWSPACE_OAUTH_CLIENT_SECRET", "secret-from-fallback")

		conf := GetOAuthConfig()
		if conf.ClientID != "id-from-fallback" {
			t.Errorf("ClientID = %q, want id-from-fallback", conf.ClientID)
		}
		if conf.ClientSecret != "secret-from-fallback" {
			t.Errorf("ClientSecret = %q, want secret-from-fallback", conf.ClientSecret)
		}
	})

	t.Run("documented wins over fallback", func(t *testing.T) {
		t.Setenv("GOOGLE_CLIENT_ID", "id-from-google-env")
		t.Setenv("FLOWSPACE_OAUTH_CLIENT_ID", "id-from-fallback")

		if conf := GetOAuthConfig(); conf.ClientID != "id-from-google-env" {
			t.Errorf("ClientID = %q, want id-from-google-env", conf.ClientID)
		}
	})

	t.Run("redirect URL defaults to OOB", func(t *testing.T) {
		t.Setenv("FLOWSPACE_OAUTH_REDIRECT_URL", "")

		if conf := GetOAuthConfig(); conf.RedirectURL != "urn:ietf:wg:oauth:2.0:oob" {
			t.Errorf("RedirectURL = %q, want the OOB URN", conf.RedirectURL)
		}
	})

	t.Run("redirect URL from environment", func(t *testing.T) {
		t.Setenv("FLOWSPACE_OAUTH_REDIRECT_URL", "http://localhost:9292/callback")

		if conf := GetOAuthConfig(); conf.RedirectURL != "http://localhost:9292/callback" {
			t.Errorf("RedirectURL = %q, want http://localhost:9292/callback", conf.RedirectURL)
		}
	})
}

func TestDefaultOAuthScopes(t *testing.T) {
	required := []string{
		"https://www.googleapis.com/auth/calendar",
		"https://www.googleapis.com/auth/drive",
		"https://www.googleapis.com/auth/spreadsheets",
		"https://www.googleapis.com/auth/gmail.readonly",
		"https://www.googleapis.com/auth/gmail.send",
	}
	for _, scope := range required {
		found := false
		for _, s := range DefaultOAuthScopes {
			if s == scope {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("DefaultOAuthScopes missing %s", scope)
		}
	}
}
