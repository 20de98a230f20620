package model

// Badge tiers, awarded by total review count. The highest matching threshold
// wins and the badge is recomputed on every increment, so it is always a pure
// function of NumReviews.
const (
	BadgeReviewer          = "Reviewer"
	BadgeExpertReviewer    = "Expert Reviewer"
	BadgeContributor       = "Contributor"
	BadgeExpertContributor = "Expert Contributor"
	BadgeSuperContributor  = "Super Contributor"
)

// User is a registered account. CredentialHash is a bcrypt hash; the server
// never stores a recoverable password.
type User struct {
	Username       string `json:"username"`
	CredentialHash string `json:"credential_hash"`
	NumReviews     int    `json:"num_reviews"`
	Badge          string `json:"badge"`
}

// NewUser builds a user with the badge derived from the review count.
func NewUser(username, credentialHash string, numReviews int) User {
	return User{
		Username:       username,
		CredentialHash: credentialHash,
		NumReviews:     numReviews,
		Badge:          BadgeFor(numReviews),
	}
}

// IncrementReviews bumps the review count and rederives the badge.
func (u *User) IncrementReviews() {
	u.NumReviews++
	u.Badge = BadgeFor(u.NumReviews)
}

// BadgeFor maps a review count to a badge tier, or "" below the first tier.
func BadgeFor(numReviews int) string {
	switch {
	case numReviews >= 20:
		return BadgeSuperContributor
	case numReviews >= 15:
		return BadgeExpertContributor
	case numReviews >= 10:
		return BadgeContributor
	case numReviews >= 5:
		return BadgeExpertReviewer
	case numReviews >= 1:
		return BadgeReviewer
	default:
		return ""
	}
}
