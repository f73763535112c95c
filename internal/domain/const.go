package domain

const (
	RequesterTypeCtxKey = "cc-requesterType"
	RequesterIdCtxKey   = "cc-requesterId"
)

const (
	DefaultAspectName = "generic"
	DefaultLimit      = 15
)

const (
	Unknown = iota
	LocalUser
)
