package domain

import (
	"strings"
	"time"
)

// Spot is a point of interest in the Occitanie catalog (waterfall, spring,
// viewpoint, swimming hole...).
type Spot struct {
	ID          string         `json:"id"`
	Slug        string         `json:"slug"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Location    GeoPoint       `json:"location"`
	ElevationM  float64        `json:"elevation_m"`
	Department  string         `json:"department"` // INSEE department code, e.g. "31"
	Description string         `json:"description,omitempty"`
	SunScore    *float64       `json:"sun_score,omitempty"` // mean daily sun hours, if computed
	Tags        []string       `json:"tags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Distance    *float64       `json:"distance,omitempty"` // computed field, meters
	CreatedAt   time.Time      `json:"created_at"`
}

// Slugify lowercases a name to url-safe ascii, folding the accented letters
// common in Occitan and French toponyms.
func Slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r == 'à' || r == 'â' || r == 'ä':
			b.WriteRune('a')
			lastDash = false
		case r == 'é' || r == 'è' || r == 'ê' || r == 'ë':
			b.WriteRune('e')
			lastDash = false
		case r == 'î' || r == 'ï':
			b.WriteRune('i')
			lastDash = false
		case r == 'ô' || r == 'ö':
			b.WriteRune('o')
			lastDash = false
		case r == 'ù' || r == 'û' || r == 'ü':
			b.WriteRune('u')
			lastDash = false
		case r == 'ç':
			b.WriteRune('c')
			lastDash = false
		default:
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// ExposureDigest is a precomputed daily exposure result for one spot,
// produced by the digest workflow and served from storage.
type ExposureDigest struct {
	ID         string     `json:"id"`
	SpotID     string     `json:"spot_id"`
	Date       string     `json:"date"` // YYYY-MM-DD
	SunHours   float64    `json:"sun_hours"`
	FirstSun   *time.Time `json:"first_sun,omitempty"`
	LastSun    *time.Time `json:"last_sun,omitempty"`
	ComputedAt time.Time  `json:"computed_at"`
}
