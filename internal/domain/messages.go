package domain

// User-facing messages, kept together so they can be handed to translators.
const (
	MsgNullCallerReference = "Bad request: null caller reference."
	MsgUserNotFound        = "Bad request: user not found."
	MsgSkillMissing        = "Bad request: skill missing."
	MsgSkillValueRange     = "Bad request: value out of range, it must be between 0 and 5."
	MsgTechnologyMissing   = "Bad request: technology missing."

	MsgOAuthNullUser        = "OAuth error, null user reference!"
	MsgNullUserReference    = "Null user reference!"
	MsgCurrentUserNotFound  = "Current user was not found!"
	MsgUserNotInDirectory   = "User does not exist in the directory!"
	MsgTechnologyNotExists  = "Technology does not exist!"
	MsgUserSkillNotExists   = "User skill does not exist!"
	MsgMalformedImportEntry = "Bad request: malformed skill entry"
	MsgInvalidImportRecord  = "Bad request: invalid import record"
)
