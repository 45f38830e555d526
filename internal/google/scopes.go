package google

// DefaultOAuthScopes are the Google OAuth scopes required by the flowspace
// tasks and triggers.
//
// The scopes provide access to:
//   - Calendar: full access (create/update/delete events)
//   - Drive: full access (upload/download/list/delete/export)
//   - Sheets: read/write spreadsheet ranges
//   - Gmail: read and send
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Google Calendar scope
	"https://www.googleapis.com/auth/calendar",

	// Google Drive scope
	"https://www.googleapis.com/auth/drive",

	// Google Sheets scope
	"https://www.googleapis.com/auth/spreadsheets",

	// Gmail scopes
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.send",
}
