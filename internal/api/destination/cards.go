package destination

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/FACorreiaa/gezi-ai/internal/types"
)

// MaxPlaceRunes is the longest place name accepted for a lookup.
const MaxPlaceRunes = 100

// UnknownCountry is shown when the country of a searched place is not known.
const UnknownCountry = "Belirlenecek"

// DefaultHighlights are shown when the narrative names no attractions.
var DefaultHighlights = []string{
	"🏛️ Tarihi Yerler ve Mimari",
	"🍴 Yerel Mutfak ve Lezzetler",
	"🎨 Kültür ve Sanat",
	"🌳 Doğal Güzellikler",
}

// PopularDestination is one of the fixed featured destinations on the home page.
type PopularDestination struct {
	City        string
	Country     string
	ImageURL    string
	Description string
}

// PopularDestinations is the featured strip shown above the city grid.
var PopularDestinations = []PopularDestination{
	{
		City:        "İstanbul",
		Country:     "Türkiye",
		ImageURL:    "https://images.unsplash.com/photo-1524231757912-21f4fe3a7200",
		Description: "Doğu ile Batının buluştuğu nokta, zengin tarihi, muhteşem mimarisi ve canlı kültürüyle büyüleyen şehir.",
	},
	{
		City:        "Kapadokya",
		Country:     "Türkiye",
		ImageURL:    "https://images.unsplash.com/photo-1570643686-e3d6376686b4",
		Description: "Peri bacaları, sıcak hava balonları ve yeraltı şehirleriyle masalsı bir deneyim sunan eşsiz coğrafya.",
	},
	{
		City:        "Antalya",
		Country:     "Türkiye",
		ImageURL:    "https://images.unsplash.com/photo-1542051841857-5f90071e7989",
		Description: "Turkuaz sahilleri, antik kentleri ve modern tesisleriyle Türkiye'nin turizm başkenti.",
	},
}

// Slug returns the path segment used to link to a place's detail page. Lower-casing is
// locale independent so directory names like "Islamabad" keep their dotted i; only the
// Turkish capital İ is folded to a plain i.
func Slug(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "İ", "I")
	return url.PathEscape(strings.ToLower(name))
}

// ValidatePlace trims place and checks it can be looked up.
func ValidatePlace(place string) (string, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return "", fmt.Errorf("%w: place is empty", types.ErrInvalidPlace)
	}
	if n := utf8.RuneCountInString(place); n > MaxPlaceRunes {
		return "", fmt.Errorf("%w: %d characters, at most %d allowed", types.ErrInvalidPlace, n, MaxPlaceRunes)
	}
	return place, nil
}

// FormatPopulation renders a population with Turkish digit grouping, e.g. 1.234.567.
func FormatPopulation(n int64) string {
	return message.NewPrinter(language.Turkish).Sprintf("%d", n)
}

// CardDescription is the one-line summary shown on a city grid card.
func CardDescription(c types.City) string {
	return fmt.Sprintf("%s, %s nüfusuyla %s'nin önemli şehirlerinden biridir.", c.Name, FormatPopulation(c.Population), c.Country)
}

func newCityCard(c types.City, imageURL string) types.CityCard {
	return types.CityCard{
		City:        c,
		ImageURL:    imageURL,
		Description: CardDescription(c),
		Slug:        Slug(c.Name),
	}
}

// samePlace compares place names the way a Turkish reader would, ignoring case.
func samePlace(a, b string) bool {
	return turkishLower(strings.TrimSpace(a)) == turkishLower(strings.TrimSpace(b))
}
