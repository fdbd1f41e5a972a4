package handler

// Sign-in error codes carried in the ?error= query parameter
const (
	ErrCodeConfiguration      = "Configuration"
	ErrCodeAccessDenied       = "AccessDenied"
	ErrCodeVerification       = "Verification"
	ErrCodeOAuthSignin        = "OAuthSignin"
	ErrCodeOAuthCallback      = "OAuthCallback"
	ErrCodeOAuthCreateAccount = "OAuthCreateAccount"
	ErrCodeEmailCreateAccount = "EmailCreateAccount"
	ErrCodeEmailSignin        = "EmailSignin"
	ErrCodeCredentialsSignin  = "CredentialsSignin"
)

const defaultErrorMessage = "An error occurred during authentication."

var errorMessages = map[string]string{
	ErrCodeConfiguration:      "There is a problem with the server configuration.",
	ErrCodeAccessDenied:       "Access denied. You do not have permission to sign in.",
	ErrCodeVerification:       "The verification link has expired or has already been used.",
	ErrCodeOAuthSignin:        "There was an error during the OAuth authentication process.",
	ErrCodeOAuthCallback:      "There was an error during the OAuth authentication process.",
	ErrCodeOAuthCreateAccount: "There was an error during the OAuth authentication process.",
	ErrCodeEmailCreateAccount: "There was an error during the OAuth authentication process.",
	ErrCodeEmailSignin:        "The email could not be sent or the email provider is not properly configured.",
	ErrCodeCredentialsSignin:  "Invalid sign in credentials. Please check your email and password.",
}

// ErrorMessage maps a sign-in error code to a human-readable message
func ErrorMessage(code string) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return defaultErrorMessage
}

// LoginErrorMessage is the shorter message shown above the sign-in form
func LoginErrorMessage(code string) string {
	switch code {
	case "":
		return ""
	case ErrCodeCredentialsSignin:
		return "Invalid email or password. Please try again."
	case ErrCodeAccessDenied:
		return "Access denied. Please check your credentials or permissions."
	default:
		return "An unknown error occurred. Please try again."
	}
}
