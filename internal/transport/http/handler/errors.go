package handler

const (
	errInternalServer     = "Internal server error"
	errStoreNotFound      = "Store not found"
	errNoAccount          = "No account with that email address exists"
	errEmailTaken         = "That email address is already registered"
	errInvalidCredentials = "Invalid email or password"
	errTokenInvalid       = "Password reset link is invalid or has expired"
	errNotOwner           = "You must own a store in order to edit it"
)
