package reports

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Scope restricts which reports a query may see.
type Scope struct {
	ReporterUID string
	All         bool
}

func OwnerScope(uid string) Scope {
	return Scope{ReporterUID: uid}
}

func PrivilegedScope() Scope {
	return Scope{All: true}
}

// ScopeFor grants the privileged scope only when email matches the configured privileged viewer.
func ScopeFor(uid string, email string, privilegedEmail string) Scope {
	if IsPrivileged(email, privilegedEmail) {
		return PrivilegedScope()
	}
	return OwnerScope(uid)
}

func IsPrivileged(email string, privilegedEmail string) bool {
	privilegedEmail = strings.TrimSpace(privilegedEmail)
	if privilegedEmail == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(email), privilegedEmail)
}

func (s Scope) Filter() bson.M {
	if s.All {
		return bson.M{}
	}
	return bson.M{"reporterUid": s.ReporterUID}
}

// CanSee reports whether a record owned by reporterUID is visible in this scope.
func (s Scope) CanSee(reporterUID string) bool {
	return s.All || (s.ReporterUID != "" && s.ReporterUID == reporterUID)
}

var reportSortNewestFirst = bson.D{
	primitive.E{Key: "createdAt", Value: -1},
	primitive.E{Key: "_id", Value: -1},
}
