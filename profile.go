package alloy

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Profile is an environment label used to select among competing adapters
// for the same key. Labels are matched case-insensitively.
type Profile string

// ProfileAll is the wildcard profile: a declaration carrying it matches
// every active profile.
const ProfileAll Profile = "*"

// DefaultProfile is used when no profile is configured anywhere.
const DefaultProfile Profile = "dev"

// profileEnvVar is the environment variable consulted by LoadProfile.
const profileEnvVar = "ALLOY_PROFILE"

func (p Profile) normalize() Profile {
	return Profile(strings.ToLower(strings.TrimSpace(string(p))))
}

// matches reports whether a declaration's profile set admits the active
// profile. An empty set behaves like the wildcard.
func profilesMatch(declared []Profile, active Profile) bool {
	if len(declared) == 0 {
		return true
	}
	active = active.normalize()
	for _, p := range declared {
		p = p.normalize()
		if p == ProfileAll || p == active {
			return true
		}
	}
	return false
}

// profilesOverlap reports whether two declarations could both match some
// active profile. Empty sets and the wildcard overlap everything.
func profilesOverlap(a, b []Profile) bool {
	if len(a) == 0 || len(b) == 0 {
		return true
	}
	set := make(map[Profile]struct{}, len(a))
	for _, p := range a {
		p = p.normalize()
		if p == ProfileAll {
			return true
		}
		set[p] = struct{}{}
	}
	for _, p := range b {
		p = p.normalize()
		if p == ProfileAll {
			return true
		}
		if _, ok := set[p]; ok {
			return true
		}
	}
	return false
}

// LoadProfile reads .env files (non-fatal if absent) and returns the active
// profile from ALLOY_PROFILE, falling back to DefaultProfile. Call once at
// bootstrap:
//
//	c := alloy.New(alloy.WithProfile(alloy.LoadProfile()))
func LoadProfile(envFiles ...string) Profile {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// .env may not exist in production
	_ = godotenv.Load(files...)

	if v := os.Getenv(profileEnvVar); v != "" {
		return Profile(v).normalize()
	}
	return DefaultProfile
}
