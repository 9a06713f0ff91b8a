package service

const (
	MsgLoginSuccessful  = "User login was successful"
	MsgNotActivated     = "The account is not activated"
	MsgTokenRefreshed   = "New token generated"
	MsgPasswordMismatch = "Passwords are not the same"
	MsgEmailTaken       = "Email is already taken"
	MsgRegistered       = "Registration successful"
	MsgActivationFailed = "Token invalid or expired"
	MsgActivated        = "The account has been activated"
	MsgWrongEmail       = "Wrong Email"
	MsgResetLinkSent    = "A password reset link has been sent to your email address"
	MsgTokenValid       = "Token is valid"
	MsgTokenInvalid     = "Token is invalid"
	MsgPasswordChanged  = "The password has been changed"
)
