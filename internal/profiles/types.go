package profiles

import "time"

// LookingFor is what a member hopes to find.
type LookingFor string

const (
	LookingFriendship LookingFor = "friendship"
	LookingCasual     LookingFor = "casual"
	LookingDating     LookingFor = "dating"
	LookingSerious    LookingFor = "serious"
)

// Genders are the accepted gender identity and preference values.
var Genders = []string{
	"Man", "Woman", "Non-binary", "Genderfluid", "Agender", "Other", "Prefer not to say",
}

// Interests are the accepted interest tags.
var Interests = []string{
	"Gaming", "Music", "Movies", "Travel", "Cooking", "Fitness", "Reading",
	"Art", "Photography", "Dancing", "Hiking", "Sports", "Tech", "Fashion",
	"Food", "Anime", "Pets", "Nature", "Science", "History", "Politics",
	"Business", "Cryptocurrency", "AI", "Programming", "Design", "Writing",
}

// LookingForOptions lists every valid LookingFor value.
var LookingForOptions = []LookingFor{LookingFriendship, LookingCasual, LookingDating, LookingSerious}

// Profile is a member's public profile.
type Profile struct {
	UID              string     `json:"uid"`
	DisplayName      string     `json:"displayName"`
	Age              int        `json:"age"`
	Bio              string     `json:"bio"`
	Location         string     `json:"location"`
	Interests        []string   `json:"interests"`
	LookingFor       LookingFor `json:"lookingFor"`
	GenderIdentity   string     `json:"genderIdentity"`
	GenderPreference []string   `json:"genderPreference"`
	Photos           []string   `json:"photos"`
	Verified         bool       `json:"verified"`
	LastActive       time.Time  `json:"lastActive"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// AgeRange bounds the ages a member wants to see, inclusive.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Preferences are a member's match filters.
type Preferences struct {
	UID              string       `json:"uid"`
	AgeRange         AgeRange     `json:"ageRange"`
	MaxDistance      int          `json:"maxDistance"`
	GenderPreference []string     `json:"genderPreference"`
	LookingFor       []LookingFor `json:"lookingFor"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// MaxMatches caps FindMatches results.
const MaxMatches = 20
