// Package session describes the auth provider's session records. They are read, never written, here.
package session

import "time"

const gsiPrefix = "SESSION#"

// Session mirrors the auth adapter's DynamoDB session item
type Session struct {
	PK           string `json:"-" dynamodbav:"pk"`
	SK           string `json:"-" dynamodbav:"sk"`
	GSI1PK       string `json:"-" dynamodbav:"GSI1PK"`
	GSI1SK       string `json:"-" dynamodbav:"GSI1SK"`
	Type         string `json:"type,omitempty" dynamodbav:"type"`
	UserID       string `json:"userId" dynamodbav:"userId"`
	SessionToken string `json:"sessionToken" dynamodbav:"sessionToken"`
	Expires      string `json:"expires" dynamodbav:"expires"`
}

// IndexKey is the GSI1PK value under which a token's session is stored
func IndexKey(token string) string {
	return gsiPrefix + token
}

// Expired reports whether the session is past its expiry.
// Sessions with an unparseable or missing expiry are not considered expired.
func (s *Session) Expired(now time.Time) bool {
	if s.Expires == "" {
		return false
	}
	exp, err := time.Parse(time.RFC3339, s.Expires)
	if err != nil {
		return false
	}
	return !now.Before(exp)
}
