package service

// Outcome is the ordered string list every tracker operation returns. The
// first element is always the outcome tag; success shapes append their
// payload fields after it.
type Outcome []string

// Outcome tags.
const (
	TagOK       = "OK"
	TagNew      = "NEW"
	TagUpdate   = "UPDATE"
	TagError    = "ERROR"
	TagFull     = "FULL"
	TagCopy     = "COPY"
	TagCred     = "CRED"
	TagPassword = "PASSWORD"
	TagNotFound = "404"
)

// Operator-facing messages carried as the second element of outcomes that
// have no data payload.
const (
	msgNotReady       = "Server is not ready for requests. Try again later."
	msgStorageDown    = "Storage is temporarily unavailable. Try again later."
	msgInternal       = "Internal server error. Try again later."
	msgSessionFull    = "Server is at capacity. Try again later."
	msgAlreadyActive  = "An active session already exists for this user."
	msgBadPassword    = "Wrong password."
	msgBadCredentials = "Session credentials rejected."
	msgDisconnected   = "Session closed."
	msgAlive          = "Session refreshed."
	msgFileRegistered = "File registered."
	msgFileRemoved    = "File removed."
	msgQuotaReached   = "File limit reached for this user."
	msgDuplicateFile  = "This file is already registered."
	msgNoFiles        = "No files registered."
	msgNoMatches      = "No matching files from active users."
	msgNoHosts        = "No active host shares this file."
)

// Tag returns the outcome tag, empty for a malformed outcome.
func (o Outcome) Tag() string {
	if len(o) == 0 {
		return ""
	}
	return o[0]
}

// Succeeded reports whether the outcome carries one of the success tags.
func (o Outcome) Succeeded() bool {
	switch o.Tag() {
	case TagOK, TagNew, TagUpdate:
		return true
	}
	return false
}

func outcome(tag string, rest ...string) Outcome {
	return append(Outcome{tag}, rest...)
}
