package domain

type CtxKey string

const (
	KeyIdentity  CtxKey = "Identity" // "sub" claim of the bearer token
	KeyUserEmail CtxKey = "Email"
	KeyRequestID CtxKey = "RequestID"
)
